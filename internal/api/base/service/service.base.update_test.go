package basesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestEnsureReturnAfter(t *testing.T) {
	// Nil opts: mặc định trả document sau update — transition trả về
	// status/version mới, không phải pre-image của driver
	opts := ensureReturnAfter(nil)
	require.NotNil(t, opts.ReturnDocument)
	assert.Equal(t, options.After, *opts.ReturnDocument)

	// Opts có sẵn nhưng chưa chỉ định ReturnDocument: vẫn default After
	opts = ensureReturnAfter(options.FindOneAndUpdate().SetUpsert(true))
	require.NotNil(t, opts.ReturnDocument)
	assert.Equal(t, options.After, *opts.ReturnDocument)
	require.NotNil(t, opts.Upsert)
	assert.True(t, *opts.Upsert)

	// Caller chỉ định Before tường minh thì giữ nguyên
	opts = ensureReturnAfter(options.FindOneAndUpdate().SetReturnDocument(options.Before))
	require.NotNil(t, opts.ReturnDocument)
	assert.Equal(t, options.Before, *opts.ReturnDocument)
}

func TestToUpdateData_PassThrough(t *testing.T) {
	src := &UpdateData{Set: map[string]interface{}{"status": "submitted"}}

	out, err := ToUpdateData(src)
	require.NoError(t, err)
	assert.Same(t, src, out)

	out2, err := ToUpdateData(*src)
	require.NoError(t, err)
	assert.Equal(t, src.Set, out2.Set)
}

func TestToUpdateData_OperatorMap(t *testing.T) {
	out, err := ToUpdateData(bson.M{
		"$set":   bson.M{"status": "approved"},
		"$unset": bson.M{"error": ""},
		"$inc":   bson.M{"version": 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "approved", out.Set["status"])
	assert.Contains(t, out.Unset, "error")
	assert.Equal(t, 1, out.Inc["version"])
	assert.Nil(t, out.Push)
}

func TestToUpdateData_PlainMapWrappedInSet(t *testing.T) {
	out, err := ToUpdateData(map[string]interface{}{
		"region":   "north",
		"progress": 40,
	})
	require.NoError(t, err)

	require.NotNil(t, out.Set)
	assert.Equal(t, "north", out.Set["region"])
	assert.Nil(t, out.Inc)
	assert.Nil(t, out.Unset)
}
