package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db/models"
	dbtypes "github.com/Kai120789/marketplace/pkg/db/types"
	"github.com/Kai120789/marketplace/pkg/enums"
)

// User inserts a consumer with a profile.
func User(t testing.TB, conn *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "hash"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := models.UserProfile{UserID: user.ID, Role: enums.UserRoleConsumer}
	if err := conn.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return user
}

func Category(t testing.TB, conn *gorm.DB, name, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func Brand(t testing.TB, conn *gorm.DB, name string) models.Brand {
	t.Helper()
	b := models.Brand{Name: name}
	if err := conn.Create(&b).Error; err != nil {
		t.Fatalf("create brand: %v", err)
	}
	return b
}

func Color(t testing.TB, conn *gorm.DB, name, value string) models.Color {
	t.Helper()
	c := models.Color{Name: name, Value: value}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatalf("create color: %v", err)
	}
	return c
}

// Product inserts a product under a fresh category and brand unless ids are given.
func Product(t testing.TB, conn *gorm.DB, name, price string, categoryID, brandID uuid.UUID) models.Product {
	t.Helper()
	if categoryID == uuid.Nil {
		categoryID = Category(t, conn, "Category "+name, "category-"+uuid.NewString()[:8]).ID
	}
	if brandID == uuid.Nil {
		brandID = Brand(t, conn, "Brand "+name).ID
	}
	p := models.Product{
		Name:         name,
		Slug:         fmt.Sprintf("product-%s", uuid.NewString()[:8]),
		CategoryID:   categoryID,
		BrandID:      brandID,
		DefaultPrice: decimal.RequireFromString(price),
	}
	if err := conn.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// Variant inserts variant seq of product at price, bumping variant_seq to match.
func Variant(t testing.TB, conn *gorm.DB, product models.Product, seq int, price string) models.ProductVariant {
	t.Helper()
	v := models.ProductVariant{
		Name:       fmt.Sprintf("%s #%d", product.Name, seq),
		Slug:       fmt.Sprintf("%s-%d", product.Slug, seq),
		ProductID:  product.ID,
		CategoryID: product.CategoryID,
		BrandID:    product.BrandID,
		Images:     dbtypes.StringList{},
		Price:      decimal.RequireFromString(price),
		Seq:        seq,
	}
	if err := conn.Create(&v).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	if err := conn.Model(&models.Product{}).Where("id = ? AND variant_seq < ?", product.ID, seq).
		UpdateColumn("variant_seq", seq).Error; err != nil {
		t.Fatalf("bump variant_seq: %v", err)
	}
	return v
}
