package logging

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// HandlerFunc is an http handler that also gets the request's LogData and
// reports failure by returning an error. The handler is expected to have
// written its own error response before returning.
type HandlerFunc func(http.ResponseWriter, *http.Request, *LogData) error

// Wrapper adapts fn to http.HandlerFunc. Each request gets a fresh LogData
// seeded with the chi request id, and produces Handler.<name>.Start followed
// by either Handler.<name>.Complete or Handler.<name>.Error.
func Wrapper(loggingName string, log *logrus.Logger, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		logData := NewLogData(log)
		if id := middleware.GetReqID(req.Context()); id != "" {
			logData.AddData("request_id", id)
		}
		logData.AddData("method", req.Method)
		logData.AddData("path", req.URL.Path)

		log.Debugf("Handler.%v.Start", loggingName)

		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		endTimer := logData.AddTiming("duration")
		err := fn(ww, req, logData)
		endTimer()
		logData.AddData("status", ww.Status())

		if err != nil {
			logData.Log().WithError(err).Errorf("Handler.%v.Error", loggingName)
			return
		}
		logData.Log().Infof("Handler.%v.Complete", loggingName)
	}
}
