package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode_Mapping(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrorCodeNotFound:        http.StatusNotFound,
		ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
		ErrorCodeDuplicateKey:    http.StatusConflict,
		ErrorCodeConflict:        http.StatusConflict,
		ErrorCodeValidation:      http.StatusBadRequest,
		ErrorCodeJSON:            http.StatusBadRequest,
		ErrorCodeUnauthorized:    http.StatusUnauthorized,
		ErrorCodeForbidden:       http.StatusForbidden,
		ErrorCodeTooManyRequests: http.StatusTooManyRequests,
		ErrorCodeUnavailable:     http.StatusServiceUnavailable,
		ErrorCodeUpstream:        http.StatusBadGateway,
		ErrorCodeDB:              http.StatusInternalServerError,
		ErrorCodePanic:           http.StatusInternalServerError,
		ErrorCodeUnknown:         http.StatusInternalServerError,
		ErrorCode(999):           http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := HTTPStatusCode(code); got != want {
			t.Errorf("code %d got %d want %d", code, got, want)
		}
	}
}

func TestErrorCodes_AreAppendOnly(t *testing.T) {
	// clients persist these numbers
	if ErrorCodeDB != 12 || ErrorCodeUpstream != 13 {
		t.Fatalf("error code values moved: db=%d upstream=%d", ErrorCodeDB, ErrorCodeUpstream)
	}
}

func TestWrap_MessageAndUnwrap(t *testing.T) {
	cause := stderrs.New("dial tcp: refused")
	err := Wrap(cause, ErrorCodeUnavailable, "failed to fetch page")

	if err.Error() != "failed to fetch page: dial tcp: refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !stderrs.Is(err, cause) {
		t.Fatal("expected errors.Is to see the cause")
	}
	if Root(err) != cause {
		t.Fatal("expected root to be the cause")
	}
	e, ok := As(err)
	if !ok || e.Message() != "failed to fetch page" {
		t.Fatalf("unexpected As result %+v %v", e, ok)
	}
}

func TestWireFrom_HidesCause(t *testing.T) {
	err := Wrapf(stderrs.New("secret dsn"), ErrorCodeDB, "query %s failed", "cms")
	w := WireFrom(err)
	if w.Code != ErrorCodeDB || w.Message != "query cms failed" {
		t.Fatalf("unexpected wire %+v", w)
	}

	foreign := WireFrom(stderrs.New("boom"))
	if foreign.Code != ErrorCodeUnknown || foreign.Message != "boom" {
		t.Fatalf("unexpected foreign wire %+v", foreign)
	}
	if WireFrom(nil) != (Wire{}) {
		t.Fatal("expected zero wire for nil")
	}
}

func TestWithFieldAndOp_CopyOnWrite(t *testing.T) {
	base := InvalidArgf("bad url")
	withField := WithField(base, "url")
	withOp := WithOp(withField, "detect.url")

	if e, _ := As(base); e.Field() != "" {
		t.Fatal("base mutated")
	}
	e, _ := As(withOp)
	if e.Field() != "url" || e.Op() != "detect.url" {
		t.Fatalf("unexpected field/op %q %q", e.Field(), e.Op())
	}

	plain := stderrs.New("x")
	if WithField(plain, "f") != plain || WithOp(plain, "o") != plain {
		t.Fatal("foreign errors should pass through")
	}
}

func TestCodeOf_ThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFoundf("cms %q not found", "ghost"))
	if !IsCode(err, ErrorCodeNotFound) {
		t.Fatalf("expected not found got %d", CodeOf(err))
	}
	if HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("unexpected status %d", HTTPStatus(err))
	}
}

func TestSugar_Codes(t *testing.T) {
	cases := []struct {
		err  error
		code ErrorCode
	}{
		{NotFoundf("x"), ErrorCodeNotFound},
		{InvalidArgf("x"), ErrorCodeInvalidArgument},
		{Validationf("x"), ErrorCodeValidation},
		{DuplicateKeyf("x"), ErrorCodeDuplicateKey},
		{JSONErrf("x"), ErrorCodeJSON},
		{PanicErrf("x"), ErrorCodePanic},
		{Unauthorizedf("x"), ErrorCodeUnauthorized},
		{Unavailablef("x"), ErrorCodeUnavailable},
		{Upstreamf("x"), ErrorCodeUpstream},
	}
	for _, tc := range cases {
		if CodeOf(tc.err) != tc.code {
			t.Errorf("%v got code %d want %d", tc.err, CodeOf(tc.err), tc.code)
		}
	}
}

func TestHTTP_Bundle(t *testing.T) {
	status, w := HTTP(nil)
	if status != http.StatusOK || w != (Wire{}) {
		t.Fatalf("unexpected nil bundle %d %+v", status, w)
	}
	status, w = HTTP(Upstreamf("site answered 500"))
	if status != http.StatusBadGateway || w.Message != "site answered 500" {
		t.Fatalf("unexpected bundle %d %+v", status, w)
	}
}

func TestNilErrorString(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("unexpected nil string %q", e.Error())
	}
}
