package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.opentelemetry.io/otel/trace/noop"
)

const verifyTestData = `{
    "status": true,
    "message": "Verification successful",
    "data": {
        "id": 4099260516,
        "domain": "test",
        "status": "success",
        "reference": "re4lyvq3s3",
        "amount": 40333,
        "paid_at": "2024-08-22T09:15:02.000Z",
        "created_at": "2024-08-22T09:14:24.000Z",
        "channel": "card",
        "currency": "NGN",
        "customer": {
            "id": 181873746,
            "first_name": "Ada",
            "last_name": "Obi",
            "email": "demo@test.com"
        }
    }
}`

const failedTestData = `{"status": false, "message": "Transaction reference not found"}`

type capturedRequest struct {
	path   string
	method string
	header http.Header
}

func newFakePaystack(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.EscapedPath()
		captured.method = r.Method
		captured.header = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestService(baseURL string) *PaystackService {
	return NewPaystackService(noop.NewTracerProvider().Tracer("test"), "sk_test_abc", baseURL, 5*time.Second)
}

func TestUnitVerifyTransaction(t *testing.T) {

	Convey("successful verification decodes the transaction", t, func() {
		srv, captured := newFakePaystack(t, http.StatusOK, verifyTestData)

		resp, err := newTestService(srv.URL).VerifyTransaction(context.Background(), "re4lyvq3s3")
		So(err, ShouldBeNil)
		So(resp.Status, ShouldBeTrue)
		So(resp.Data.ID, ShouldEqual, int64(4099260516))
		So(resp.Data.Amount, ShouldEqual, int64(40333))
		So(resp.Data.Customer.Email, ShouldEqual, "demo@test.com")

		So(captured.method, ShouldEqual, http.MethodGet)
		So(captured.path, ShouldEqual, "/transaction/verify/re4lyvq3s3")
		So(captured.header.Get("Authorization"), ShouldEqual, "Bearer sk_test_abc")
		So(captured.header.Get("Accept"), ShouldEqual, "application/json")
		So(captured.header.Get("Content-Type"), ShouldEqual, "application/json")
	})

	Convey("reference is escaped into a single path segment", t, func() {
		srv, captured := newFakePaystack(t, http.StatusOK, verifyTestData)

		_, err := newTestService(srv.URL).VerifyTransaction(context.Background(), "a/b c")
		So(err, ShouldBeNil)
		So(captured.path, ShouldEqual, "/transaction/verify/a%2Fb%20c")
	})

	Convey("falsy status is passed through without error", t, func() {
		srv, _ := newFakePaystack(t, http.StatusOK, failedTestData)

		resp, err := newTestService(srv.URL).VerifyTransaction(context.Background(), "missing")
		So(err, ShouldBeNil)
		So(resp.Status, ShouldBeFalse)
		So(resp.Data, ShouldBeNil)
	})

	Convey("non-2xx status returns InvalidAPIResponse", t, func() {
		srv, _ := newFakePaystack(t, http.StatusNotFound, failedTestData)

		resp, err := newTestService(srv.URL).VerifyTransaction(context.Background(), "missing")
		So(resp, ShouldBeNil)
		var apiErr *InvalidAPIResponse
		So(errors.As(err, &apiErr), ShouldBeTrue)
		So(apiErr.StatusCode, ShouldEqual, http.StatusNotFound)
	})

	Convey("undecodable body returns an error", t, func() {
		srv, _ := newFakePaystack(t, http.StatusOK, "<html>oops</html>")

		resp, err := newTestService(srv.URL).VerifyTransaction(context.Background(), "ref")
		So(resp, ShouldBeNil)
		So(err, ShouldNotBeNil)
	})

	Convey("unreachable provider returns an error", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		resp, err := newTestService(srv.URL).VerifyTransaction(context.Background(), "ref")
		So(resp, ShouldBeNil)
		So(err, ShouldNotBeNil)
	})
}

func TestUnitFetchTransaction(t *testing.T) {

	Convey("fetch uses the numeric id endpoint", t, func() {
		srv, captured := newFakePaystack(t, http.StatusOK, verifyTestData)

		resp, err := newTestService(srv.URL).FetchTransaction(context.Background(), 4099260516)
		So(err, ShouldBeNil)
		So(resp.Data.Reference, ShouldEqual, "re4lyvq3s3")
		So(captured.path, ShouldEqual, "/transaction/4099260516")
	})

	Convey("trailing slash on the api base is tolerated", t, func() {
		srv, captured := newFakePaystack(t, http.StatusOK, verifyTestData)

		_, err := newTestService(srv.URL+"/").FetchTransaction(context.Background(), 7)
		So(err, ShouldBeNil)
		So(captured.path, ShouldEqual, "/transaction/7")
	})

	Convey("server errors are reported", t, func() {
		srv, _ := newFakePaystack(t, http.StatusInternalServerError, `{}`)

		_, err := newTestService(srv.URL).FetchTransaction(context.Background(), 7)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "[500]")
	})

	Convey("requests give up after the configured timeout", t, func() {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(block)

		s := NewPaystackService(noop.NewTracerProvider().Tracer("test"), "sk", srv.URL, 50*time.Millisecond)
		_, err := s.FetchTransaction(context.Background(), 1)
		So(err, ShouldNotBeNil)
	})
}
