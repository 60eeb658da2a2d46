package databases

// go generate: mockery --name AdminDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecotrack/waste-report-api/models"
)

const adminName = "admins"
const adminResetName = "admin_password_resets"

// AdminDatabase contains the methods to use with the admin database
type AdminDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.AdminUser, error)
	InsertOne(ctx context.Context, admin models.AdminUser) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type adminDatabase struct {
	db DatabaseHelper
}

// NewAdminDatabase initializes a new instance of admin database with the
// provided db connection
func NewAdminDatabase(db DatabaseHelper) AdminDatabase {
	return &adminDatabase{
		db: db,
	}
}

func (a *adminDatabase) FindOne(ctx context.Context, filter interface{}) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	err := a.db.Collection(adminName).FindOne(ctx, filter).Decode(&admin)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (a *adminDatabase) InsertOne(ctx context.Context, admin models.AdminUser) (interface{}, error) {
	return a.db.Collection(adminName).InsertOne(ctx, admin)
}

func (a *adminDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return a.db.Collection(adminName).UpdateOne(ctx, filter, update, opts...)
}

// AdminResetDatabase stores hashed password reset tokens
type AdminResetDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.AdminPasswordReset, error)
	InsertOne(ctx context.Context, reset models.AdminPasswordReset) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) error
}

type adminResetDatabase struct {
	db DatabaseHelper
}

// NewAdminResetDatabase initializes a new instance of admin reset database
// with the provided db connection
func NewAdminResetDatabase(db DatabaseHelper) AdminResetDatabase {
	return &adminResetDatabase{
		db: db,
	}
}

func (a *adminResetDatabase) FindOne(ctx context.Context, filter interface{}) (*models.AdminPasswordReset, error) {
	reset := &models.AdminPasswordReset{}
	err := a.db.Collection(adminResetName).FindOne(ctx, filter).Decode(&reset)
	if err != nil {
		return nil, err
	}
	return reset, nil
}

func (a *adminResetDatabase) InsertOne(ctx context.Context, reset models.AdminPasswordReset) (interface{}, error) {
	return a.db.Collection(adminResetName).InsertOne(ctx, reset)
}

func (a *adminResetDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return a.db.Collection(adminResetName).UpdateOne(ctx, filter, update, opts...)
}

func (a *adminResetDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	return a.db.Collection(adminResetName).DeleteOne(ctx, filter)
}
