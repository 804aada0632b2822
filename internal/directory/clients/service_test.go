package clients

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceforge/invoiceforge/internal/platform/httpx"
	"github.com/invoiceforge/invoiceforge/internal/platform/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewService(st, slog.New(slog.NewTextHandler(io.Discard, nil))), st
}

func TestCreateAssignsID(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), ClientInput{Name: "Globex", Email: "ap@globex.test"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Globex", created.Name)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)
}

func TestListReturnsStoreOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, ClientInput{Name: "Acme"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, ClientInput{Name: "Initech"})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestUpdateOverwritesAllFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ClientInput{Name: "Globex", Email: "ap@globex.test", Phone: "555-0100"})
	require.NoError(t, err)

	// Full overwrite: omitted fields are cleared, not preserved.
	updated, err := svc.Update(ctx, created.ID, ClientInput{Name: "Globex Ltd"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Globex Ltd", updated.Name)
	assert.Empty(t, updated.Email)
	assert.Empty(t, updated.Phone)
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "missing", ClientInput{Name: "Nobody"})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ClientInput{Name: "Globex"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestStoreFailureSurfacesAsRemote(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ClientInput{Name: "Globex"})
	require.NoError(t, err)

	boom := errors.New("connection reset")

	st.FailNext = boom
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, httpx.ErrRemote)

	st.FailNext = boom
	_, err = svc.Update(ctx, created.ID, ClientInput{Name: "Globex Ltd"})
	assert.ErrorIs(t, err, httpx.ErrRemote)

	// The failed update left the record untouched.
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.Name)

	st.FailNext = boom
	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, httpx.ErrRemote)
}
