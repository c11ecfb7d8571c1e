package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mstat/metastat"
	"mstat/metastat/defs"
	"mstat/metastat/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type HttpTestSuite struct {
	suite.Suite
	epoch  time.Time
	store  *mocks.Store
	server *HttpServer
}

func TestHttpTestSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(HttpTestSuite))
}

func (suite *HttpTestSuite) SetupTest() {
	suite.epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	suite.store = mocks.NewStore()

	var ss []defs.Sample
	for i, v := range []float64{80, 90, 100} {
		t := suite.epoch.Add(time.Duration(i+1) * time.Hour)
		ss = append(ss,
			defs.Sample{Time: t, Category: defs.ContinuousGlucose, Source: "Glucose", Value: v},
			defs.Sample{Time: t, Category: defs.Ketone, Source: "BloodKetone", Value: []float64{0.5, 1.0, 1.5}[i]},
		)
	}
	_, err := suite.store.WriteSamples(context.Background(), ss)
	require.NoError(suite.T(), err)

	cfg := defs.DefaultConfig()
	cfg.Epoch = suite.epoch.Format(time.RFC3339)
	suite.server = New(suite.store, &metastat.Pipeline{Config: cfg}, zap.NewExample())
}

func (suite *HttpTestSuite) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	suite.server.Router().ServeHTTP(rec, req)
	return rec
}

func (suite *HttpTestSuite) window() string {
	return fmt.Sprintf("start=%d&end=%d", suite.epoch.Unix(), suite.epoch.Add(24*time.Hour).Unix())
}

func (suite *HttpTestSuite) TestSamples() {
	rec := suite.get("/samples?" + suite.window())
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	var ss []defs.Sample
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &ss))
	assert.Len(suite.T(), ss, 6)
}

func (suite *HttpTestSuite) TestSamplesRequiresWindow() {
	rec := suite.get("/samples?start=abc&end=1")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	rec = suite.get("/samples")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *HttpTestSuite) TestSamplesStoreError() {
	suite.store.Err = errors.New("unavailable")
	rec := suite.get("/samples?" + suite.window())
	assert.Equal(suite.T(), http.StatusInternalServerError, rec.Code)
}

func (suite *HttpTestSuite) TestReport() {
	rec := suite.get("/report?width=7&" + suite.window())
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	var r metastat.Report
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(suite.T(), float64(7), r.Width)
	assert.Equal(suite.T(), 6, r.Count)
	require.Len(suite.T(), r.GKI, 1)
	assert.InDelta(suite.T(), 5.0, r.GKI[0].MeanRatio, 1e-12)
}

func (suite *HttpTestSuite) TestReportRejectsWidth() {
	rec := suite.get("/report?width=-1&" + suite.window())
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	rec = suite.get("/report?width=week&" + suite.window())
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	rec = suite.get("/report?width=0.000000001&" + suite.window())
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "at least 0.0417 days")
}
