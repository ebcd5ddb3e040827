package mongodb

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrRecordNotFound  = errors.New("record not found in the database")
	ErrVersionConflict = errors.New("document was modified concurrently")
	ErrInvalidFieldKey = errors.New("key cannot be used as a document field name")
	ErrDuplicateKey    = errors.New("a document with this id already exists")
)

// ValidFieldKey reports whether key can be a single segment of a dotted
// field path. Ids used as map keys inside documents must pass it.
func ValidFieldKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, ".$")
}

func ResolveFilterAndOptionsSearch(args ...any) (bson.M, []*options.FindOptions) {
	filter := bson.M{}
	var opts []*options.FindOptions

	for _, arg := range args {
		switch v := arg.(type) {
		case bson.M:
			filter = v
		case *options.FindOptions:
			opts = append(opts, v)
		default:
			// Just ignore if no args match
		}
	}

	return filter, opts
}
