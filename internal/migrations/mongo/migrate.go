// Package mongo provisions the database: collections with schema
// validators, the uniqueness index that backstops slot conflicts, and the
// TTL index that reclaims abandoned slot locks. Running it repeatedly is
// safe; every step is idempotent.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salonbook/internal/migrations/mongo/validators"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type Migrator struct {
	db  *mongo.Database
	log *logger.Logger
}

func NewMigrator(client *mongo.Client, database string, log *logger.Logger) *Migrator {
	return &Migrator{
		db:  client.Database(database),
		log: log,
	}
}

func (m *Migrator) Run(ctx context.Context) error {
	collections := []struct {
		name      string
		validator bson.M
	}{
		{"Appointments", validators.Appointment},
		{"Slot_locks", validators.SlotLock},
		{"Services", validators.Service},
		{"Packages", validators.Package},
		{"Users", validators.User},
	}

	for _, c := range collections {
		if err := m.ensureCollection(ctx, c.name, c.validator); err != nil {
			return fmt.Errorf("collection %s: %w", c.name, err)
		}
	}

	if err := m.ensureAppointmentIndexes(ctx); err != nil {
		return fmt.Errorf("appointment indexes: %w", err)
	}
	if err := m.ensureSlotLockIndexes(ctx); err != nil {
		return fmt.Errorf("slot lock indexes: %w", err)
	}
	if err := m.ensureCatalogIndexes(ctx); err != nil {
		return fmt.Errorf("catalog indexes: %w", err)
	}

	m.log.Info("Migration completed")
	return nil
}

func (m *Migrator) ensureCollection(ctx context.Context, name string, validator bson.M) error {
	err := m.db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator))
	if err != nil {
		// Collection already exists: update the validator in place instead.
		if strings.Contains(err.Error(), "already exists") || isNamespaceExists(err) {
			return m.db.RunCommand(ctx, bson.D{
				{Key: "collMod", Value: name},
				{Key: "validator", Value: validator},
				{Key: "validationLevel", Value: "moderate"},
			}).Err()
		}
		return err
	}

	m.log.Info("Created collection", "collection", name)
	return nil
}

// 48 is MongoDB's NamespaceExists error code.
func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == 48
}

// ensureAppointmentIndexes builds the uniqueness backstop and the query
// indexes. The unique index is partial: it covers only statuses that occupy
// a slot, so a cancelled appointment frees its slot for rebooking. Partial
// filters cannot express $ne, hence the explicit $in list.
func (m *Migrator) ensureAppointmentIndexes(ctx context.Context) error {
	coll := m.db.Collection("Appointments")

	occupying := []string{
		string(model.StatusPending),
		string(model.StatusConfirmed),
		string(model.StatusCompleted),
		string(model.StatusNoShow),
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "appointment_date", Value: 1}, {Key: "time_slot", Value: 1}},
			Options: options.Index().
				SetName("uniq_active_slot").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": occupying},
				}),
		},
		{
			Keys:    bson.D{{Key: "appointment_date", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_date_status"),
		},
		{
			Keys:    bson.D{{Key: "customer.user_id", Value: 1}},
			Options: options.Index().SetName("idx_customer_user").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "customer.email", Value: 1}},
			Options: options.Index().SetName("idx_customer_email"),
		},
		{
			Keys:    bson.D{{Key: "staff_id", Value: 1}, {Key: "appointment_date", Value: 1}},
			Options: options.Index().SetName("idx_staff_date").SetSparse(true),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (m *Migrator) ensureSlotLockIndexes(ctx context.Context) error {
	coll := m.db.Collection("Slot_locks")

	// expireAfterSeconds 0 expires documents at their own expires_at.
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().
			SetName("ttl_expires_at").
			SetExpireAfterSeconds(0),
	})
	return err
}

func (m *Migrator) ensureCatalogIndexes(ctx context.Context) error {
	services := m.db.Collection("Services")
	if _, err := services.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetName("idx_category_name"),
	}); err != nil {
		return err
	}

	users := m.db.Collection("Users")
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	})
	return err
}
