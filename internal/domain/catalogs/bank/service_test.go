package bank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/tx"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/catalogs/store"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/domain/filter"
)

type memRepo struct {
	stores   map[id.ID]store.Store
	assigned map[id.ID]id.ID // user -> store
	banks    map[id.ID]Bank
	lines    map[id.ID]int
}

func (r *memRepo) Create(_ context.Context, b *Bank) error { r.banks[b.ID] = *b; return nil }

func (r *memRepo) Rename(_ context.Context, bankID id.ID, name string) error {
	b, ok := r.banks[bankID]
	if !ok {
		return apperror.NewNotFound("bank", bankID)
	}
	b.Name = name
	r.banks[bankID] = b
	return nil
}

func (r *memRepo) Delete(_ context.Context, bankID id.ID) error {
	if _, ok := r.banks[bankID]; !ok {
		return apperror.NewNotFound("bank", bankID)
	}
	delete(r.banks, bankID)
	return nil
}

func (r *memRepo) visible(b Bank, scope filter.Scope) bool {
	return !scope.Restricted() || r.assigned[*scope.EmployeeID] == b.StoreID
}

func (r *memRepo) Get(_ context.Context, bankID id.ID, scope filter.Scope) (*View, error) {
	b, ok := r.banks[bankID]
	if !ok || !r.visible(b, scope) {
		return nil, apperror.NewNotFound("bank", bankID)
	}
	return &View{Bank: b, StoreName: r.stores[b.StoreID].Name}, nil
}

func (r *memRepo) List(_ context.Context, storeID *id.ID, scope filter.Scope) ([]View, error) {
	out := []View{}
	for _, b := range r.banks {
		if (storeID == nil || b.StoreID == *storeID) && r.visible(b, scope) {
			out = append(out, View{Bank: b, StoreName: r.stores[b.StoreID].Name})
		}
	}
	return out, nil
}

func (r *memRepo) CountBalanceLines(_ context.Context, bankID id.ID) (int, error) {
	return r.lines[bankID], nil
}

func (r *memRepo) GetByID(_ context.Context, storeID id.ID) (*store.Store, error) {
	s, ok := r.stores[storeID]
	if !ok {
		return nil, apperror.NewNotFound("store", storeID)
	}
	return &s, nil
}

func (r *memRepo) RequireStoreAccess(ctx context.Context, storeID id.ID) error {
	u := appctx.GetUser(ctx)
	if u.IsAdmin() || r.assigned[id.MustParse(u.UserID)] == storeID {
		return nil
	}
	return apperror.NewForbidden("you do not have access to this store")
}

type fixture struct {
	repo         *memRepo
	svc          *Service
	admin, emp   context.Context
	mine, theirs store.Store
}

func newFixture() *fixture {
	mine := store.Store{ID: id.New(), Name: "Mine"}
	theirs := store.Store{ID: id.New(), Name: "Theirs"}
	empID := id.New()
	repo := &memRepo{
		stores:   map[id.ID]store.Store{mine.ID: mine, theirs.ID: theirs},
		assigned: map[id.ID]id.ID{empID: mine.ID},
		banks:    map[id.ID]Bank{},
		lines:    map[id.ID]int{},
	}
	return &fixture{
		repo:   repo,
		svc:    NewService(repo, repo, repo, tx.Passthrough{}, nil),
		admin:  appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New().String(), Role: appctx.RoleAdmin}),
		emp:    appctx.WithUser(context.Background(), &appctx.UserContext{UserID: empID.String(), Role: appctx.RoleEmployee}),
		mine:   mine,
		theirs: theirs,
	}
}

func TestCreateBank(t *testing.T) {
	f := newFixture()

	v, err := f.svc.Create(f.emp, CreateRequest{Name: " BCA ", StoreID: f.mine.ID})
	require.NoError(t, err)
	assert.Equal(t, "BCA", v.Name)
	assert.Equal(t, "Mine", v.StoreName)

	_, err = f.svc.Create(f.emp, CreateRequest{Name: "BRI", StoreID: f.theirs.ID})
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.svc.Create(f.admin, CreateRequest{Name: "BRI", StoreID: id.New()})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Create(f.admin, CreateRequest{StoreID: f.mine.ID})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Create(f.admin, CreateRequest{Name: "BCA", StoreID: f.mine.ID})
	assert.NoError(t, err, "bank names are not unique within a store")
}

func TestListAndGetScoped(t *testing.T) {
	f := newFixture()
	mineBank, _ := f.svc.Create(f.admin, CreateRequest{Name: "BCA", StoreID: f.mine.ID})
	theirBank, _ := f.svc.Create(f.admin, CreateRequest{Name: "BNI", StoreID: f.theirs.ID})

	list, err := f.svc.List(f.emp)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mineBank.ID, list[0].ID)

	all, err := f.svc.List(f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.ListByStore(f.emp, f.theirs.ID)
	assert.True(t, apperror.IsForbidden(err))

	byStore, err := f.svc.ListByStore(f.admin, f.theirs.ID)
	require.NoError(t, err)
	require.Len(t, byStore, 1)
	assert.Equal(t, theirBank.ID, byStore[0].ID)

	_, err = f.svc.Get(f.emp, theirBank.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "bank not found or access denied", appErr.Message)

	got, err := f.svc.Get(f.admin, theirBank.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", got.StoreName)
}

func TestUpdateBank(t *testing.T) {
	f := newFixture()
	b, _ := f.svc.Create(f.admin, CreateRequest{Name: "BCA", StoreID: f.mine.ID})
	other, _ := f.svc.Create(f.admin, CreateRequest{Name: "BNI", StoreID: f.theirs.ID})

	v, err := f.svc.Update(f.emp, b.ID, "BCA Syariah")
	require.NoError(t, err)
	assert.Equal(t, "BCA Syariah", v.Name)
	assert.Equal(t, "BCA Syariah", f.repo.banks[b.ID].Name)

	_, err = f.svc.Update(f.emp, other.ID, "X")
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "BNI", f.repo.banks[other.ID].Name)

	_, err = f.svc.Update(f.admin, b.ID, "  ")
	assert.True(t, apperror.IsValidation(err))
}

func TestDeleteBank(t *testing.T) {
	f := newFixture()
	b, _ := f.svc.Create(f.admin, CreateRequest{Name: "BCA", StoreID: f.mine.ID})

	f.repo.lines[b.ID] = 3
	_, err := f.svc.Delete(f.emp, b.ID)
	assert.True(t, apperror.IsValidation(err))

	f.repo.lines[b.ID] = 0
	deleted, err := f.svc.Delete(f.emp, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "BCA", deleted.Name)
	assert.Empty(t, f.repo.banks)

	_, err = f.svc.Delete(f.admin, b.ID)
	assert.True(t, apperror.IsNotFound(err))
}
