package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectModel struct{}

func (rejectModel) ValidateRecord(r Record) (Record, error) {
	return nil, errors.New("rejected")
}

func TestRecordSetUpdateSortsByT(t *testing.T) {
	rs, err := New(nil)
	require.NoError(t, err)

	err = rs.Update([]Record{
		{FieldID: "b", FieldT: int64(20)},
		{FieldID: "a", FieldT: int64(10)},
	}, true)
	require.NoError(t, err)

	require.Equal(t, 2, rs.Len())
	assert.Equal(t, "a", rs.At(0).ID())
	assert.Equal(t, "b", rs.At(1).ID())
}

func TestRecordSetUpdateUpsertsByIdentity(t *testing.T) {
	rs, err := New(nil, Record{FieldID: "x", FieldT: int64(1), "v": 1})
	require.NoError(t, err)

	err = rs.Update([]Record{{FieldID: "x", FieldT: int64(1), "v": 2}}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, 2, rs.At(0)["v"])
}

func TestRecordSetFallsBackToTWhenIDAbsent(t *testing.T) {
	rs, err := New(nil)
	require.NoError(t, err)
	err = rs.Update([]Record{{FieldT: int64(5), "v": "a"}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, "a", rs.GetByT(5, Record{})["v"])
}

func TestRecordSetPropagatesModelValidationError(t *testing.T) {
	_, err := New(rejectModel{}, Record{"v": 1})
	assert.Error(t, err)
}

func TestRecordSetFilterAndClone(t *testing.T) {
	rs, err := New(nil, Record{FieldID: "a", FieldT: int64(1)}, Record{FieldID: "b", FieldT: int64(2)})
	require.NoError(t, err)

	filtered := rs.Filter(func(r Record) bool { return r.ID() == "a" })
	assert.Equal(t, 1, filtered.Len())

	clone := rs.Clone()
	clone.Update([]Record{{FieldID: "c", FieldT: int64(3)}}, true)
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, 3, clone.Len())
}

func TestRecordSetGetByIDDefault(t *testing.T) {
	rs, err := New(nil)
	require.NoError(t, err)
	def := Record{"default": true}
	assert.Equal(t, def, rs.GetByID("missing", def))
}
