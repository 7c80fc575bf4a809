package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/odshop/storefront/internal/models"
)

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := "file:" + name + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Address{},
		&models.Category{}, &models.Product{},
		&models.Order{}, &models.OrderItem{},
	))
	return db
}

func TestRepositoryCRUD(t *testing.T) {
	db := openTestDB(t, "repo_crud")
	repo := New[models.Category](db)

	c := models.Category{Name: "Phones", IsActive: true}
	require.NoError(t, repo.Add(&c))
	require.NotZero(t, c.ID)

	got, err := repo.ByID(c.ID)
	require.NoError(t, err)
	require.Equal(t, "Phones", got.Name)

	got.Description = "Smartphones and accessories"
	require.NoError(t, repo.Update(got))

	all, err := repo.All()
	require.NoError(t, err)
	require.Len(t, all, 1)

	count, err := repo.Count()
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	ok, err := repo.ExistsByID(c.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.DeleteByID(c.ID))
	_, err = repo.ByID(c.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteByIDMissingIsNoop(t *testing.T) {
	db := openTestDB(t, "repo_delete_noop")
	repo := New[models.Category](db)
	require.NoError(t, repo.DeleteByID(9999))
}

func TestByIDNotFound(t *testing.T) {
	db := openTestDB(t, "repo_notfound")
	repo := New[models.Product](db)
	_, err := repo.ByID(42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryNameExistsIgnoresCase(t *testing.T) {
	db := openTestDB(t, "repo_name_exists")
	repo := NewCategoryRepository(db)
	require.NoError(t, repo.Add(&models.Category{Name: "Laptops"}))

	ok, err := repo.NameExists("LAPTOPS")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.NameExists("Tablets")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCategoryNameExistsExcluding(t *testing.T) {
	db := openTestDB(t, "repo_name_excluding")
	repo := NewCategoryRepository(db)
	a := models.Category{Name: "Audio"}
	b := models.Category{Name: "Video"}
	require.NoError(t, repo.Add(&a))
	require.NoError(t, repo.Add(&b))

	// Renaming a to its own name is not a conflict.
	ok, err := repo.NameExistsExcluding("audio", a.ID)
	require.NoError(t, err)
	require.False(t, ok)

	// Renaming b to a's name is.
	ok, err = repo.NameExistsExcluding("Audio", b.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestProductHasOrderItems(t *testing.T) {
	db := openTestDB(t, "repo_has_items")
	cats := NewCategoryRepository(db)
	products := NewProductRepository(db)
	orders := NewOrderRepository(db)

	cat := models.Category{Name: "Gadgets"}
	require.NoError(t, cats.Add(&cat))
	p := models.Product{Name: "Widget", Price: decimal.NewFromInt(10), CategoryID: cat.ID}
	require.NoError(t, products.Add(&p))

	ok, err := products.HasOrderItems(p.ID)
	require.NoError(t, err)
	require.False(t, ok)

	user := models.User{Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	o := models.Order{
		Status: models.StatusPending, ShippingAddress: "1 Main St", City: "Muscat",
		PhoneNumber: "99999999", UserID: user.ID,
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 2, UnitPrice: p.Price}},
	}
	require.NoError(t, orders.Add(&o))

	ok, err = products.HasOrderItems(p.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOrderUpdateStatusAndCount(t *testing.T) {
	db := openTestDB(t, "repo_order_status")
	orders := NewOrderRepository(db)
	user := models.User{Email: "count@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	o := models.Order{
		Status: models.StatusPending, ShippingAddress: "2 Side St", City: "Muscat",
		PhoneNumber: "88888888", UserID: user.ID,
	}
	require.NoError(t, orders.Add(&o))

	n, err := orders.CountByStatus(models.StatusPending)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, orders.UpdateStatus(o.ID, models.StatusConfirmed))
	got, err := orders.ByID(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusConfirmed, got.Status)

	n, err = orders.CountByStatus(models.StatusPending)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	require.ErrorIs(t, orders.UpdateStatus(9999, models.StatusConfirmed), ErrNotFound)
}

func TestUserByEmailIgnoresCase(t *testing.T) {
	db := openTestDB(t, "repo_user_email")
	users := NewUserRepository(db)
	require.NoError(t, db.Create(&models.User{Email: "Jane@Example.com", PasswordHash: "x"}).Error)

	u, err := users.ByEmail("jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "Jane@Example.com", u.Email)

	ok, err := users.EmailExists("JANE@EXAMPLE.COM")
	require.NoError(t, err)
	require.True(t, ok)
}
