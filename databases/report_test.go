package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecotrack/waste-report-api/config"
	"github.com/ecotrack/waste-report-api/databases"
	"github.com/ecotrack/waste-report-api/databases/mocks"
	"github.com/ecotrack/waste-report-api/models"
)

func TestNewReportDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	reportDB := databases.NewReportDatabase(db)

	assert.NotEmpty(t, reportDB)
}

func TestReportDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).ReportID = "WR-000007"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "reports").Return(collectionHelper)

	// Create new database with mocked Database interface
	reportDba := databases.NewReportDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	report, err := reportDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, report)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with a different filter for the correct
	// result
	report, err = reportDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, "WR-000007", report.ReportID)
	assert.NoError(t, err)
}

func TestReportDatabase_Find(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelperErr databases.CursorHelper
	var cursorHelperCorrect databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelperErr = &mocks.CursorHelper{}
	cursorHelperCorrect = &mocks.CursorHelper{}

	cursorHelperErr.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	cursorHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{{ReportID: "WR-000007"}, {ReportID: "WR-000008"}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(cursorHelperErr, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(cursorHelperCorrect, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "reports").Return(collectionHelper)

	reportDba := databases.NewReportDatabase(dbHelper)

	reports, err := reportDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, reports)
	assert.EqualError(t, err, "mocked-error")

	reports, err = reportDba.Find(context.Background(), bson.M{"error": false})

	assert.Len(t, reports, 2)
	assert.Equal(t, "WR-000008", reports[1].ReportID)
	assert.NoError(t, err)
}

func TestReportDatabase_UpdateOne(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"matched": true}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"matched": false}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "reports").Return(collectionHelper)

	reportDba := databases.NewReportDatabase(dbHelper)

	res, err := reportDba.UpdateOne(context.Background(), bson.M{"matched": true}, bson.M{"$set": bson.M{"status": "verified"}})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	res, err = reportDba.UpdateOne(context.Background(), bson.M{"matched": false}, bson.M{"$set": bson.M{"status": "verified"}})

	assert.NoError(t, err)
	assert.Equal(t, int64(0), res.ModifiedCount)
}
