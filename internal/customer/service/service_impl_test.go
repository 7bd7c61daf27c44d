package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/customer/domain"
	"github.com/smallbiznis/faktura/internal/customer/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T, name string) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, _ := snowflake.NewNode(1)
	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateCustomer(t *testing.T) {
	svc := setup(t, "customer_create")
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:       "  Musterfirma GmbH  ",
		Email:      "info@musterfirma.de",
		Address:    "Hauptstraße 1",
		PostalCode: "10115",
		City:       "Berlin",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if customer.Name != "Musterfirma GmbH" {
		t.Fatalf("name = %q", customer.Name)
	}
	if customer.ID == 0 {
		t.Fatal("missing id")
	}

	loaded, err := svc.GetByID(ctx, customer.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.City != "Berlin" {
		t.Fatalf("city = %q", loaded.City)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	svc := setup(t, "customer_validation")
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: " ", Email: "a@b.de"}); err != domain.ErrInvalidName {
		t.Fatalf("empty name err = %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "x", Email: "not-an-email"}); err != domain.ErrInvalidEmail {
		t.Fatalf("bad email err = %v", err)
	}
}

func TestUpdateCustomer(t *testing.T) {
	svc := setup(t, "customer_update")
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Alt GmbH", Email: "alt@firma.de"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{
		ID: customer.ID.String(),
		CreateCustomerRequest: domain.CreateCustomerRequest{
			Name:  "Neu GmbH",
			Email: "neu@firma.de",
			City:  "Hamburg",
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Neu GmbH" || updated.City != "Hamburg" {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestDeleteCustomer(t *testing.T) {
	svc := setup(t, "customer_delete")
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "x", Email: "x@y.de"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, customer.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, customer.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("second delete err = %v", err)
	}
	if _, err := svc.GetByID(ctx, customer.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("get after delete err = %v", err)
	}
}

func TestInvalidID(t *testing.T) {
	svc := setup(t, "customer_invalid_id")

	if _, err := svc.GetByID(context.Background(), "not-a-number"); err != domain.ErrInvalidID {
		t.Fatalf("err = %v", err)
	}
}
