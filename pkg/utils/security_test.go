package utils

import (
	"testing"

	"casteaching-go/internal/config"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPasswords(t *testing.T) {
	Convey("Given a hashed password", t, func() {
		hash, err := HashPassword("12345678")
		So(err, ShouldBeNil)
		So(hash, ShouldNotEqual, "12345678")

		Convey("The right password verifies", func() {
			So(VerifyPassword("12345678", hash), ShouldBeTrue)
		})

		Convey("A wrong password does not", func() {
			So(VerifyPassword("87654321", hash), ShouldBeFalse)
		})
	})
}

func TestTokens(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", Issuer: "casteaching", ExpireHours: 1}

	Convey("Given a generated token", t, func() {
		token, err := GenerateToken(cfg, 42)
		So(err, ShouldBeNil)

		Convey("It parses back to the same user", func() {
			claims, err := ParseToken(cfg, token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, 42)
			So(claims.Issuer, ShouldEqual, "casteaching")
		})

		Convey("It is rejected with another secret", func() {
			_, err := ParseToken(&config.JWTConfig{Secret: "other"}, token)
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})

	Convey("Expired tokens are reported as expired", t, func() {
		expired := &config.JWTConfig{Secret: "test-secret", ExpireHours: -1}
		token, err := GenerateToken(expired, 42)
		So(err, ShouldBeNil)

		_, err = ParseToken(cfg, token)
		So(err, ShouldEqual, ErrExpiredToken)
	})

	Convey("Garbage is an invalid token", t, func() {
		_, err := ParseToken(cfg, "not-a-token")
		So(err, ShouldEqual, ErrInvalidToken)
	})
}

func TestGenerateSessionID(t *testing.T) {
	Convey("Session ids are random and url safe", t, func() {
		a, err := GenerateSessionID()
		So(err, ShouldBeNil)
		b, err := GenerateSessionID()
		So(err, ShouldBeNil)
		So(a, ShouldNotEqual, b)
		So(len(a), ShouldEqual, 43)
		So(a, ShouldNotContainSubstring, "=")
	})
}
