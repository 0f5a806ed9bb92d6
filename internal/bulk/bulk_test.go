package bulk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/apperror"
)

type fakeOp struct {
	id       uint
	invalid  bool
	execErr  error
	executed *[]uint
}

func (o fakeOp) Validate() []apperror.FieldError {
	if o.invalid {
		return []apperror.FieldError{{Field: "id", Messages: []string{"invalid"}}}
	}
	return nil
}

func (o fakeOp) Execute(ctx context.Context) (uint, error) {
	*o.executed = append(*o.executed, o.id)
	if o.execErr != nil {
		return 0, o.execErr
	}
	return o.id, nil
}

func builder(executed *[]uint, invalid map[uint]bool, missing map[uint]bool, failing map[uint]error) Builder[fakeOp] {
	return func(ctx context.Context, id uint) (fakeOp, error) {
		if missing[id] {
			return fakeOp{}, gorm.ErrRecordNotFound
		}
		return fakeOp{id: id, invalid: invalid[id], execErr: failing[id], executed: executed}, nil
	}
}

func TestApplyPartialFailure(t *testing.T) {
	var executed []uint
	result, err := Apply(context.Background(), []uint{1, 2, 3}, builder(&executed, map[uint]bool{2: true}, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 3}, result.SuccessIDs)
	assert.Equal(t, []apperror.FieldError{{Field: "id", Messages: []string{"invalid"}}}, result.Errors)
	assert.Equal(t, []uint{1, 3}, executed)
}

func TestApplySkipsMissingIDs(t *testing.T) {
	var executed []uint
	result, err := Apply(context.Background(), []uint{1, 2}, builder(&executed, nil, map[uint]bool{1: true}, nil))
	require.NoError(t, err)

	assert.Equal(t, []uint{2}, result.SuccessIDs)
	assert.Nil(t, result.Errors)
}

func TestApplySwallowsDomainErrors(t *testing.T) {
	var executed []uint
	failing := map[uint]error{2: apperror.ErrPermissionDenied}
	result, err := Apply(context.Background(), []uint{1, 2, 3}, builder(&executed, nil, nil, failing))
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 3}, result.SuccessIDs)
	assert.Nil(t, result.Errors)
	assert.Equal(t, []uint{1, 2, 3}, executed)
}

func TestApplyPropagatesInfrastructureErrors(t *testing.T) {
	var executed []uint
	failing := map[uint]error{2: errors.New("connection reset")}
	result, err := Apply(context.Background(), []uint{1, 2, 3}, builder(&executed, nil, nil, failing))
	require.Error(t, err)

	assert.Equal(t, []uint{1}, result.SuccessIDs)
	assert.Equal(t, []uint{1, 2}, executed)
}

func TestApplyStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed []uint
	_, err := Apply(ctx, []uint{1}, builder(&executed, nil, nil, nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, executed)
}

func TestResultOmitsEmptyErrors(t *testing.T) {
	data, err := json.Marshal(&Result{SuccessIDs: []uint{4}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"successIds":[4]}`, string(data))
}
