package main

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"paystack-mcp-server/config"
)

func TestUnitReportConfigError(t *testing.T) {

	Convey("missing secret key exits 1 with setup hints", t, func() {
		err := config.Default().Validate()
		So(err, ShouldEqual, config.ErrMissingSecretKey)

		var stderr bytes.Buffer
		So(reportConfigError(&stderr, err), ShouldEqual, 1)

		lines := stderr.String()
		So(lines, ShouldContainSubstring, "Error: environment variable PAYSTACK_SECRET_KEY is not set")
		So(lines, ShouldContainSubstring, "Please set the PAYSTACK_SECRET_KEY environment variable.")
		So(lines, ShouldContainSubstring, "Example: export PAYSTACK_SECRET_KEY=sk_test_your_key_here")
	})

	Convey("other configuration errors exit 1 without the secret key hint", t, func() {
		var stderr bytes.Buffer
		So(reportConfigError(&stderr, errors.New("invalid configuration: Port failed \"gt\" check")), ShouldEqual, 1)
		So(stderr.String(), ShouldContainSubstring, "invalid configuration")
		So(stderr.String(), ShouldNotContainSubstring, "PAYSTACK_SECRET_KEY")
	})
}
