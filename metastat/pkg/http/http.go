package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mstat/metastat"
	"mstat/metastat/defs"
	"mstat/metastat/pkg/mg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type httpStore interface {
	mg.SampleStore
}

type HttpServer struct {
	Store    httpStore
	Pipeline *metastat.Pipeline

	Logger *zap.Logger
}

func New(s httpStore, p *metastat.Pipeline, logger *zap.Logger) *HttpServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HttpServer{
		Store:    s,
		Pipeline: p,
		Logger:   logger,
	}
}

// Serve blocks serving the API on addr.
func (s *HttpServer) Serve(addr string) error {
	s.Logger.Info("serving http api", zap.String("addr", addr))
	return s.Router().Run(addr)
}

func (s *HttpServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/samples", func(c *gin.Context) {
		start, end, err := window(c)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), defs.TimeoutInterval)
		defer cancel()

		samples, err := s.Store.ReadSamples(ctx, start, end)
		if err != nil {
			s.Logger.Debug("unable to read samples", zap.Error(err))
			c.String(http.StatusInternalServerError, "something went wrong reading samples: %v", err)
			return
		}

		c.JSON(http.StatusOK, samples)
	})

	r.GET("/report", func(c *gin.Context) {
		start, end, err := window(c)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		width := defs.MonthDays
		if widths := s.Pipeline.Config.Widths; len(widths) > 0 {
			width = widths[0]
		}
		if w := c.Query("width"); w != "" {
			width, err = strconv.ParseFloat(w, 64)
			if err != nil || !(width >= defs.MinWidthDays) {
				c.String(http.StatusBadRequest, "expected width of at least %.4f days", defs.MinWidthDays)
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), defs.TimeoutInterval)
		defer cancel()

		samples, err := s.Store.ReadSamples(ctx, start, end)
		if err != nil {
			c.String(http.StatusInternalServerError, "something went wrong reading samples: %v", err)
			return
		}

		report, err := s.Pipeline.Run(ctx, samples, width)
		switch {
		case errors.Is(err, defs.ErrSequenceViolation), errors.Is(err, defs.ErrInterpolationExhausted):
			c.String(http.StatusUnprocessableEntity, err.Error())
			return
		case err != nil:
			c.String(http.StatusInternalServerError, "something went wrong building report: %v", err)
			return
		}

		c.JSON(http.StatusOK, report)
	})

	return r
}

// window reads the start and end unix timestamps of a request.
func window(c *gin.Context) (time.Time, time.Time, error) {
	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("expected unix timestamp for end")
	}
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("expected unix timestamp for start")
	}
	return time.Unix(start, 0), time.Unix(end, 0), nil
}
