// Package seed fills an empty store with the fixed roles, the admin account
// and a small sample inventory. Every step checks before it writes, so Run
// can be called on every start.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/agassama1998/materialmanagementapp/internal/domain"
	"github.com/agassama1998/materialmanagementapp/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Categories domain.CategoryRepository
	Materials  domain.MaterialRepository
	Users      domain.UserRepository
	Roles      domain.RoleRepository

	AdminEmail    string
	AdminPassword string

	Log *logrus.Logger
}

type sampleMaterial struct {
	name     string
	sku      string
	category string
	quantity int
	minimum  int
	price    string
}

var sampleCategories = []domain.Category{
	{Name: "Microcontrollers", Description: "Development boards and MCUs"},
	{Name: "Sensors", Description: "Environmental and motion sensors"},
	{Name: "Passive Components", Description: "Resistors, capacitors, inductors"},
}

var sampleMaterials = []sampleMaterial{
	{name: "Arduino Uno R3", sku: "ARD-UNO-R3", category: "Microcontrollers", quantity: 50, minimum: 10, price: "23.00"},
	{name: "Arduino Nano", sku: "ARD-NANO", category: "Microcontrollers", quantity: 5, minimum: 8, price: "19.90"},
	{name: "DHT22 Temperature Sensor", sku: "SEN-DHT22", category: "Sensors", quantity: 30, minimum: 15, price: "9.50"},
}

func Run(ctx context.Context, d Deps) error {
	for _, role := range domain.Roles() {
		if err := d.Roles.EnsureRole(ctx, role); err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
	}
	if err := ensureAdmin(ctx, d); err != nil {
		return err
	}

	categoryCount, err := d.Categories.CountCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if categoryCount == 0 {
		for _, c := range sampleCategories {
			c := c
			if _, err := d.Categories.CreateCategory(ctx, &c); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		d.Log.Infof("Seed: Inserted %d sample categories", len(sampleCategories))
	}

	materialCount, err := d.Materials.CountMaterials(ctx)
	if err != nil {
		return fmt.Errorf("seed materials: %w", err)
	}
	if materialCount > 0 {
		return nil
	}

	categories, err := d.Categories.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed materials: %w", err)
	}
	byName := make(map[string]int64, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}

	inserted := 0
	for _, s := range sampleMaterials {
		categoryID, ok := byName[s.category]
		if !ok {
			d.Log.Warnf("Seed: Skipping %s, category %q is missing", s.sku, s.category)
			continue
		}
		m := &domain.Material{
			Name:            s.name,
			SKU:             s.sku,
			CategoryID:      categoryID,
			Quantity:        s.quantity,
			MinimumQuantity: s.minimum,
			UnitPrice:       decimal.RequireFromString(s.price),
		}
		if _, err := d.Materials.CreateMaterial(ctx, m); err != nil {
			return fmt.Errorf("seed material %s: %w", s.sku, err)
		}
		inserted++
	}
	d.Log.Infof("Seed: Inserted %d sample materials", inserted)
	return nil
}

func ensureAdmin(ctx context.Context, d Deps) error {
	email := usecase.NormalizeEmail(d.AdminEmail)
	if email == "" || d.AdminPassword == "" {
		d.Log.Warn("Seed: Admin credentials not configured, skipping admin account")
		return nil
	}

	_, err := d.Users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	hash, err := usecase.HashPassword(d.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	_, err = d.Users.CreateUser(ctx, &domain.User{Email: email, PasswordHash: hash, Role: domain.RoleAdmin})
	if err != nil && !errors.Is(err, domain.ErrDuplicateEmail) {
		return fmt.Errorf("seed admin: %w", err)
	}
	d.Log.Infof("Seed: Admin account %s ensured", email)
	return nil
}
