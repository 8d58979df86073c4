package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inficom-solutions/portfolio-backend/models"
	"github.com/inficom-solutions/portfolio-backend/services"
)

func sqliteConfig(t *testing.T) map[string]string {
	return map[string]string{
		"DB_TYPE":     "sqlite",
		"SQLITE_PATH": filepath.Join(t.TempDir(), "portfolio.db"),
	}
}

func TestSeedDefaultFeatures(t *testing.T) {
	ctx := context.Background()
	db, err := openDatabase(ctx, sqliteConfig(t))
	require.NoError(t, err)
	defer db.Close(ctx)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n, err := seedDefaultFeatures(ctx, db.FeatureRepo(), now)
	require.NoError(t, err)
	defaults := models.DefaultFeatures()
	assert.Equal(t, len(defaults), n)

	features, err := db.FeatureRepo().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, features, len(defaults))
	assert.Equal(t, defaults[0].Title, features[0].Title)
	assert.NotEmpty(t, features[0].ID)

	n, err = seedDefaultFeatures(ctx, db.FeatureRepo(), now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-password", "--env-file", filepath.Join(t.TempDir(), "missing.env"), "s3cret-pass"})
	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}

func TestHashPasswordCommandReadsStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("from-stdin\n"))
	cmd.SetArgs([]string{"hash-password"})
	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")))
}

func TestNewAuthenticatorHashesPlainPassword(t *testing.T) {
	auth, err := newAuthenticator(map[string]string{
		"ADMIN_EMAIL":    "admin@example.com",
		"ADMIN_PASSWORD": "correct horse",
		"JWT_SECRET":     "0123456789abcdef0123",
	})
	require.NoError(t, err)

	session, err := auth.Login("admin@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestNewAuthenticatorRequiresCredentials(t *testing.T) {
	_, err := newAuthenticator(map[string]string{"JWT_SECRET": "0123456789abcdef0123"})
	assert.Error(t, err)
}

func TestNewMailer(t *testing.T) {
	assert.IsType(t, services.LogMailer{}, newMailer(map[string]string{}))
	assert.IsType(t, &services.ResendMailer{}, newMailer(map[string]string{
		"RESEND_API_KEY":    "re_test",
		"RESEND_FROM_EMAIL": "site@example.com",
	}))
}

func TestContactRecipients(t *testing.T) {
	assert.Equal(t, []string{"admin@example.com"}, contactRecipients(map[string]string{"ADMIN_EMAIL": "admin@example.com"}))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, contactRecipients(map[string]string{
		"ADMIN_EMAIL":        "admin@example.com",
		"CONTACT_RECIPIENTS": "a@example.com, b@example.com",
	}))
}
