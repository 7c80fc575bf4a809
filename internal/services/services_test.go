package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/odshop/storefront/internal/models"
	"github.com/odshop/storefront/internal/repository"
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

func newCatalog(t *testing.T, name string) (*gorm.DB, *CategoryService, *ProductService) {
	db := openTestDB(t, name)
	cats := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	return db, NewCategoryService(cats), NewProductService(products, cats)
}

func TestCategoryCreateRejectsDuplicateName(t *testing.T) {
	_, catSvc, _ := newCatalog(t, "svc_cat_dup")
	require.NoError(t, catSvc.Create(&models.Category{Name: "Phones"}))
	err := catSvc.Create(&models.Category{Name: "phones"})
	require.ErrorIs(t, err, ErrCategoryNameTaken)
}

func TestCategoryUpdateAllowsOwnName(t *testing.T) {
	_, catSvc, _ := newCatalog(t, "svc_cat_rename")
	a := models.Category{Name: "Audio"}
	b := models.Category{Name: "Video"}
	require.NoError(t, catSvc.Create(&a))
	require.NoError(t, catSvc.Create(&b))

	a.Description = "updated"
	require.NoError(t, catSvc.Update(&a))

	b.Name = "AUDIO"
	require.ErrorIs(t, catSvc.Update(&b), ErrCategoryNameTaken)
}

func TestCategoryDeleteBlockedWhileProductsExist(t *testing.T) {
	_, catSvc, prodSvc := newCatalog(t, "svc_cat_delete")
	cat := models.Category{Name: "Gadgets"}
	require.NoError(t, catSvc.Create(&cat))
	p := models.Product{Name: "Widget", Price: decimal.NewFromInt(5), CategoryID: cat.ID}
	require.NoError(t, prodSvc.Create(&p))

	require.ErrorIs(t, catSvc.Delete(cat.ID), ErrCategoryHasProducts)

	require.NoError(t, prodSvc.Delete(p.ID))
	require.NoError(t, catSvc.Delete(cat.ID))
	// Deleting again is a no-op.
	require.NoError(t, catSvc.Delete(cat.ID))
}

func TestProductCreateStampsCreatedAt(t *testing.T) {
	_, catSvc, prodSvc := newCatalog(t, "svc_prod_created")
	cat := models.Category{Name: "Phones"}
	require.NoError(t, catSvc.Create(&cat))

	p := models.Product{Name: "Model X", Price: decimal.NewFromFloat(199.99), CategoryID: cat.ID}
	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, prodSvc.Create(&p))
	require.False(t, p.CreatedAt.Before(before))
}

func TestProductCreateValidation(t *testing.T) {
	_, catSvc, prodSvc := newCatalog(t, "svc_prod_validate")
	cat := models.Category{Name: "Phones"}
	require.NoError(t, catSvc.Create(&cat))

	err := prodSvc.Create(&models.Product{Name: "Bad", Price: decimal.NewFromInt(-1), CategoryID: cat.ID})
	require.ErrorIs(t, err, ErrNegativePrice)

	err = prodSvc.Create(&models.Product{Name: "Orphan", Price: decimal.NewFromInt(1), CategoryID: 9999})
	require.ErrorIs(t, err, ErrUnknownCategory)

	// Zero price is allowed.
	require.NoError(t, prodSvc.Create(&models.Product{Name: "Free", Price: decimal.Zero, CategoryID: cat.ID}))
}

func TestProductDeleteBlockedWhileOrdered(t *testing.T) {
	db, catSvc, prodSvc := newCatalog(t, "svc_prod_delete")
	cat := models.Category{Name: "Gadgets"}
	require.NoError(t, catSvc.Create(&cat))
	p := models.Product{Name: "Widget", Price: decimal.NewFromInt(10), CategoryID: cat.ID}
	require.NoError(t, prodSvc.Create(&p))

	user := models.User{Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	orderSvc := NewOrderService(repository.NewOrderRepository(db), repository.NewProductRepository(db))
	o := models.Order{
		ShippingAddress: "1 Main St", City: "Muscat", PhoneNumber: "99999999", UserID: user.ID,
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 1}},
	}
	require.NoError(t, orderSvc.Create(&o))

	require.ErrorIs(t, prodSvc.Delete(p.ID), ErrProductInUse)
}

func newOrderEnv(t *testing.T, name string) (*gorm.DB, *OrderService, models.Product, models.User) {
	db := openTestDB(t, name)
	cats := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)

	cat := models.Category{Name: "Gadgets"}
	require.NoError(t, cats.Add(&cat))
	p := models.Product{Name: "Widget", Price: decimal.NewFromFloat(12.50), CategoryID: cat.ID}
	require.NoError(t, products.Add(&p))
	user := models.User{Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	return db, NewOrderService(orders, products), p, user
}

func TestOrderCreateComputesTotals(t *testing.T) {
	_, svc, p, user := newOrderEnv(t, "svc_order_totals")
	o := models.Order{
		ShippingAddress: "1 Main St", City: "Muscat", PhoneNumber: "99999999", UserID: user.ID,
		Status:   models.StatusDelivered, // must be ignored
		Discount: decimal.NewFromInt(5),
		Items: []models.OrderItem{
			{ProductID: p.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(999)}, // price must be snapshotted, not trusted
		},
	}
	require.NoError(t, svc.Create(&o))

	require.Equal(t, models.StatusPending, o.Status)
	require.True(t, o.SubTotal.Equal(decimal.NewFromFloat(37.50)), "subtotal %s", o.SubTotal)
	require.True(t, o.TotalAmount.Equal(decimal.NewFromFloat(32.50)), "total %s", o.TotalAmount)
	require.True(t, o.Items[0].UnitPrice.Equal(p.Price))
	require.False(t, o.OrderDate.IsZero())
}

func TestOrderCreateValidation(t *testing.T) {
	_, svc, p, user := newOrderEnv(t, "svc_order_validate")

	base := func() models.Order {
		return models.Order{
			ShippingAddress: "1 Main St", City: "Muscat", PhoneNumber: "99999999", UserID: user.ID,
			Items: []models.OrderItem{{ProductID: p.ID, Quantity: 1}},
		}
	}

	empty := base()
	empty.Items = nil
	require.ErrorIs(t, svc.Create(&empty), ErrNoItems)

	badQty := base()
	badQty.Items[0].Quantity = 0
	require.ErrorIs(t, svc.Create(&badQty), ErrInvalidQuantity)

	negDiscount := base()
	negDiscount.Discount = decimal.NewFromInt(-1)
	require.ErrorIs(t, svc.Create(&negDiscount), ErrInvalidDiscount)

	bigDiscount := base()
	bigDiscount.Discount = decimal.NewFromInt(100) // subtotal is 12.50
	require.ErrorIs(t, svc.Create(&bigDiscount), ErrInvalidDiscount)

	ghost := base()
	ghost.Items[0].ProductID = 9999
	require.ErrorIs(t, svc.Create(&ghost), ErrUnknownProduct)
}

func TestOrderStatusLifecycle(t *testing.T) {
	_, svc, p, user := newOrderEnv(t, "svc_order_lifecycle")
	o := models.Order{
		ShippingAddress: "1 Main St", City: "Muscat", PhoneNumber: "99999999", UserID: user.ID,
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 1}},
	}
	require.NoError(t, svc.Create(&o))

	// Pending cannot skip straight to Delivered.
	require.ErrorIs(t, svc.UpdateStatus(o.ID, models.StatusDelivered), ErrInvalidTransition)

	require.NoError(t, svc.UpdateStatus(o.ID, models.StatusConfirmed))
	require.NoError(t, svc.UpdateStatus(o.ID, models.StatusShipping))
	require.NoError(t, svc.UpdateStatus(o.ID, models.StatusDelivered))

	// Delivered is terminal.
	require.ErrorIs(t, svc.Cancel(o.ID), ErrInvalidTransition)

	require.ErrorIs(t, svc.UpdateStatus(9999, models.StatusConfirmed), repository.ErrNotFound)
}

func TestOrderPendingCount(t *testing.T) {
	_, svc, p, user := newOrderEnv(t, "svc_order_pending")
	for i := 0; i < 2; i++ {
		o := models.Order{
			ShippingAddress: "1 Main St", City: "Muscat", PhoneNumber: "99999999", UserID: user.ID,
			Items: []models.OrderItem{{ProductID: p.ID, Quantity: 1}},
		}
		require.NoError(t, svc.Create(&o))
	}
	n, err := svc.PendingCount()
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestUserRegisterAndAuthenticate(t *testing.T) {
	db := openTestDB(t, "svc_user_auth")
	require.NoError(t, db.Create(&models.Role{Name: models.RoleCustomer}).Error)
	svc := NewUserService(repository.NewUserRepository(db))

	u, err := svc.Register("jane@example.com", "s3cret!", "Jane", "Doe")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", u.PasswordHash)
	require.True(t, u.HasRole(models.RoleCustomer))

	_, err = svc.Register("JANE@example.com", "other", "J", "D")
	require.ErrorIs(t, err, ErrEmailTaken)

	got, err := svc.Authenticate("jane@example.com", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate("jane@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate("nobody@example.com", "s3cret!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
