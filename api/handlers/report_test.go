package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecotrack/waste-report-api/api/handlers"
	"github.com/ecotrack/waste-report-api/databases"
	mocksdb "github.com/ecotrack/waste-report-api/databases/mocks"
	"github.com/ecotrack/waste-report-api/models"
)

const testReportHexID = "5fc51f58c72ff10004dca382"
const testCitizenHexID = "61be0ebf22cfea7e7550f00e"

func TestReport_ReportByIDHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/report/1234", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	reportDatabase := databases.NewReportDatabase(db)
	u := handlers.Report{
		RDB: reportDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ReportByIDHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get objectID from Hex", Error: "the provided hex string is not a valid ObjectID"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_ReportByIDHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/report/"+testReportHexID, nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).ReportID = "WR-000042"
		(*arg).Status = models.StatusSubmitted
	})
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	reportDatabase := databases.NewReportDatabase(db)
	u := handlers.Report{
		RDB: reportDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ReportByIDHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	testReport := models.Report{}
	_ = json.Unmarshal(rr.Body.Bytes(), &testReport)

	assert.Equal(t, "WR-000042", testReport.ReportID)
	assert.Equal(t, models.StatusSubmitted, testReport.Status)
}

func TestReport_CreateReportHandlerMissingDescription(t *testing.T) {
	body := bytes.NewBufferString(`{"citizenId": "` + testCitizenHexID + `", "latitude": 40.7, "longitude": -74.0, "imageUrl": "https://img.example/1.jpg"}`)
	req, err := http.NewRequest("POST", "/api/v1/report", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateReportHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "description is required", Error: "validation failed"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_CreateReportHandlerBadCoordinates(t *testing.T) {
	body := bytes.NewBufferString(`{"citizenId": "` + testCitizenHexID + `", "description": "overflowing bin", "latitude": 91.0, "longitude": -74.0, "imageUrl": "https://img.example/1.jpg"}`)
	req, err := http.NewRequest("POST", "/api/v1/report", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateReportHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "coordinates out of range", Error: "validation failed"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_CreateReportHandlerMissingImage(t *testing.T) {
	body := bytes.NewBufferString(`{"citizenId": "` + testCitizenHexID + `", "description": "overflowing bin", "latitude": 40.7, "longitude": -74.0}`)
	req, err := http.NewRequest("POST", "/api/v1/report", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateReportHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "at least one image is required", Error: "validation failed"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_VerifyReportHandlerSuccess(t *testing.T) {
	body := bytes.NewBufferString(`{"adminId": "admin-1", "approve": true, "notes": "confirmed on site"}`)
	req, err := http.NewRequest("PUT", "/api/v1/report/"+testReportHexID+"/verify", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	conn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).ReportID = "WR-000042"
		(*arg).Status = models.StatusVerified
		(*arg).VerifiedBy = "admin-1"
	})
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.VerifyReportHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	testReport := models.Report{}
	_ = json.Unmarshal(rr.Body.Bytes(), &testReport)

	assert.Equal(t, models.StatusVerified, testReport.Status)
	assert.Equal(t, "admin-1", testReport.VerifiedBy)
}

func TestReport_VerifyReportHandlerWrongState(t *testing.T) {
	body := bytes.NewBufferString(`{"adminId": "admin-1", "approve": true}`)
	req, err := http.NewRequest("PUT", "/api/v1/report/"+testReportHexID+"/verify", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	conn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)
	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).Status = models.StatusAssigned
	})
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.VerifyReportHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "report is assigned, expected submitted", Error: "invalid state transition"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_VerifyReportHandlerRejects(t *testing.T) {
	body := bytes.NewBufferString(`{"adminId": "admin-1", "approve": false, "notes": "not waste"}`)
	req, err := http.NewRequest("PUT", "/api/v1/report/"+testReportHexID+"/verify", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	conn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).Status = models.StatusRejected
	})
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.VerifyReportHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	testReport := models.Report{}
	_ = json.Unmarshal(rr.Body.Bytes(), &testReport)

	assert.Equal(t, models.StatusRejected, testReport.Status)
}

func TestReport_StartCleanupHandlerMissingBeforeImage(t *testing.T) {
	body := bytes.NewBufferString(`{"collectorId": "` + testCitizenHexID + `"}`)
	req, err := http.NewRequest("PUT", "/api/v1/report/"+testReportHexID+"/start", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.StartCleanupHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "before-cleanup image is required", Error: "validation failed"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_StartCleanupHandlerWrongCollector(t *testing.T) {
	body := bytes.NewBufferString(`{"collectorId": "collector-2", "beforeImageUrl": "https://img.example/before.jpg"}`)
	req, err := http.NewRequest("PUT", "/api/v1/report/"+testReportHexID+"/start", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	conn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)
	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).Status = models.StatusAssigned
		(*arg).AssignedTo = "collector-1"
	})
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.StartCleanupHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusForbidden {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusForbidden)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "caller is not the assigned collector", Error: "permission denied"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_AwardPointsHandlerSuccess(t *testing.T) {
	body := bytes.NewBufferString(`{"adminId": "admin-1", "points": 25}`)
	req, err := http.NewRequest("POST", "/api/v1/report/"+testReportHexID+"/award", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var reportsConn databases.CollectionHelper
	var usersConn databases.CollectionHelper
	var reportResult databases.SingleResultHelper
	var userResult databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	reportsConn = &mocksdb.CollectionHelper{}
	usersConn = &mocksdb.CollectionHelper{}
	reportResult = &mocksdb.SingleResultHelper{}
	userResult = &mocksdb.SingleResultHelper{}

	reportResult.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).Status = models.StatusCompleted
		(*arg).CitizenID = testCitizenHexID
		(*arg).PointsAwarded = 25
	})
	reportsConn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(reportResult)
	reportsConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	userResult.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	usersConn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(userResult)
	usersConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(reportsConn)
	db.(*mocksdb.DatabaseHelper).On("Collection", "users").Return(usersConn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.AwardPointsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	testReport := models.Report{}
	_ = json.Unmarshal(rr.Body.Bytes(), &testReport)

	assert.Equal(t, 25, testReport.PointsAwarded)
}

func TestReport_AwardPointsHandlerReleasesClaimOnCreditFailure(t *testing.T) {
	body := bytes.NewBufferString(`{"adminId": "admin-1", "points": 25}`)
	req, err := http.NewRequest("POST", "/api/v1/report/"+testReportHexID+"/award", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var reportsConn databases.CollectionHelper
	var usersConn databases.CollectionHelper
	var reportResult databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	reportsConn = &mocksdb.CollectionHelper{}
	usersConn = &mocksdb.CollectionHelper{}
	reportResult = &mocksdb.SingleResultHelper{}

	reportResult.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).Status = models.StatusCompleted
		(*arg).CitizenID = testCitizenHexID
	})
	reportsConn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(reportResult)

	var reportFilters []bson.M
	reportsConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			reportFilters = append(reportFilters, args.Get(1).(bson.M))
		})

	usersConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(reportsConn)
	db.(*mocksdb.DatabaseHelper).On("Collection", "users").Return(usersConn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.AwardPointsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusInternalServerError {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusInternalServerError)
	}

	// The failed credit must undo the award claim so a retry can succeed.
	reportsConn.(*mocksdb.CollectionHelper).AssertNumberOfCalls(t, "UpdateOne", 2)
	assert.Len(t, reportFilters, 2)
	assert.Equal(t, 25, reportFilters[1]["pointsAwarded"])
}

func TestReport_AwardPointsHandlerAlreadyAwarded(t *testing.T) {
	body := bytes.NewBufferString(`{"adminId": "admin-1", "points": 25}`)
	req, err := http.NewRequest("POST", "/api/v1/report/"+testReportHexID+"/award", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).Status = models.StatusCompleted
		(*arg).PointsAwarded = 25
	})
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.AwardPointsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "points already awarded for report", Error: "points already awarded"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_AwardPointsHandlerNotCompleted(t *testing.T) {
	body := bytes.NewBufferString(`{"adminId": "admin-1", "points": 25}`)
	req, err := http.NewRequest("POST", "/api/v1/report/"+testReportHexID+"/award", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).Status = models.StatusSubmitted
	})
	conn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.AwardPointsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "report is not completed", Error: "invalid state transition"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_AwardPointsHandlerNonPositivePoints(t *testing.T) {
	body := bytes.NewBufferString(`{"adminId": "admin-1", "points": 0}`)
	req, err := http.NewRequest("POST", "/api/v1/report/"+testReportHexID+"/award", body)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"report_id": testReportHexID})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.AwardPointsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "points must be positive", Error: "validation failed"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_NearbyReportsHandlerFiltersByDistance(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/nearby?lat=40.70&lng=-74.00&radius=5", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	cursorHelper = &mocksdb.CursorHelper{}

	cursorHelper.(*mocksdb.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{
			{ReportID: "WR-000001", Location: models.Location{Latitude: 40.701, Longitude: -74.001}},
			{ReportID: "WR-000002", Location: models.Location{Latitude: 40.73, Longitude: -74.02}},
		}
	})
	conn.(*mocksdb.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.NearbyReportsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var nearby []models.Report
	_ = json.Unmarshal(rr.Body.Bytes(), &nearby)

	assert.Len(t, nearby, 2)
}

func TestReport_NearbyReportsHandlerCrossesAntimeridian(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/nearby?lat=0&lng=179.98&radius=5", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	cursorHelper = &mocksdb.CursorHelper{}

	cursorHelper.(*mocksdb.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{
			{ReportID: "WR-000001", Location: models.Location{Latitude: 0, Longitude: 179.99}},
			{ReportID: "WR-000002", Location: models.Location{Latitude: 0, Longitude: -179.99}},
		}
	})

	var capturedFilter bson.M
	conn.(*mocksdb.CollectionHelper).On("Find", mock.Anything, mock.Anything).
		Return(cursorHelper, nil).
		Run(func(args mock.Arguments) {
			capturedFilter = args.Get(1).(bson.M)
		})
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.NearbyReportsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	// The longitude bound has to wrap: a single $gte/$lte range past 180
	// would exclude reports just across the seam.
	assert.Contains(t, capturedFilter, "$or")
	assert.NotContains(t, capturedFilter, "location.longitude")

	var nearby []models.Report
	_ = json.Unmarshal(rr.Body.Bytes(), &nearby)

	assert.Len(t, nearby, 2)
}

func TestReport_NearbyReportsHandlerSmallRadius(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/nearby?lat=40.70&lng=-74.00&radius=1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	cursorHelper = &mocksdb.CursorHelper{}

	cursorHelper.(*mocksdb.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{
			{ReportID: "WR-000001", Location: models.Location{Latitude: 40.701, Longitude: -74.001}},
			{ReportID: "WR-000002", Location: models.Location{Latitude: 40.73, Longitude: -74.02}},
		}
	})
	conn.(*mocksdb.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.NearbyReportsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var nearby []models.Report
	_ = json.Unmarshal(rr.Body.Bytes(), &nearby)

	assert.Len(t, nearby, 1)
	assert.Equal(t, "WR-000001", nearby[0].ReportID)
}

func TestReport_NearbyReportsHandlerInvalidCoordinates(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/nearby?lat=bogus&lng=-74.00", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.NearbyReportsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
}

func TestReport_HotspotsHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/hotspots?minReports=3", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	cursorHelper = &mocksdb.CursorHelper{}

	cursorHelper.(*mocksdb.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{
			{Location: models.Location{Latitude: 40.701, Longitude: -74.001}},
			{Location: models.Location{Latitude: 40.7009, Longitude: -74.0012}},
			{Location: models.Location{Latitude: 40.7011, Longitude: -74.0008}},
			{Location: models.Location{Latitude: 41.50, Longitude: -75.00}},
		}
	})
	conn.(*mocksdb.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.HotspotsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var hotspots []models.Hotspot
	_ = json.Unmarshal(rr.Body.Bytes(), &hotspots)

	assert.Len(t, hotspots, 1)
	assert.Equal(t, 3, hotspots[0].Count)
	assert.Equal(t, "low", hotspots[0].Severity)
}

func TestReport_ReportsHandlerUnknownStatus(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports?status=archived", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ReportsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "unknown report status", Error: "validation failed"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestReport_ReportsByCitizenIDHandlerEmptyResponse(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/citizen/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}
	cursorHelper = &mocksdb.CursorHelper{}

	cursorHelper.(*mocksdb.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = nil
	})
	conn.(*mocksdb.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "reports").Return(conn)

	u := handlers.Report{
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ReportsByCitizenIDHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := "[]"
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}
