package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMigration(t *testing.T, table string) string {
	t.Helper()
	for _, m := range migrations {
		if strings.Contains(m, "CREATE TABLE IF NOT EXISTS "+table+" ") {
			return m
		}
	}
	t.Fatalf("no migration creates table %s", table)
	return ""
}

// The repositories address columns by name, so each table's DDL must carry
// every column its repository reads or writes.
func TestMigrationsDefineRepositoryColumns(t *testing.T) {
	tables := map[string][]string{
		"users":           {"email", "username", "password_hash", "created_at", "updated_at"},
		"sessions":        {"user_id", "token", "refresh_token", "expires_at", "created_at"},
		"profiles":        {"user_id", "display_name", "bio", "location", "avatar_url", "favorite_cigar"},
		"follows":         {"follower_id", "followee_id", "created_at"},
		"posts":           {"user_id", "image_url", "caption", "created_at"},
		"post_likes":      {"post_id", "user_id", "created_at"},
		"comments":        {"post_id", "user_id", "parent_comment_id", "text", "created_at"},
		"comment_likes":   {"comment_id", "user_id", "created_at"},
		"humidor_entries": {"user_id", "cigar_name", "brand", "vitola", "quantity", "purchase_price", "purchase_date", "notes"},
		"reviews":         {"user_id", "cigar_name", "brand", "rating", "body", "flavor_notes", "image_url", "created_at"},
	}

	for table, columns := range tables {
		t.Run(table, func(t *testing.T) {
			ddl := findMigration(t, table)
			for _, column := range columns {
				assert.Contains(t, ddl, column, "table %s is missing column %s", table, column)
			}
		})
	}
}

func TestSessionTokensAreUniqueAndIndexed(t *testing.T) {
	ddl := findMigration(t, "sessions")
	require.Contains(t, ddl, "token VARCHAR(512) UNIQUE NOT NULL")
	require.Contains(t, ddl, "refresh_token VARCHAR(512) UNIQUE NOT NULL")

	var tokenIdx, refreshIdx bool
	for _, m := range migrations {
		if strings.Contains(m, "idx_sessions_token ON sessions(token)") {
			tokenIdx = true
		}
		if strings.Contains(m, "idx_sessions_refresh_token ON sessions(refresh_token)") {
			refreshIdx = true
		}
	}
	assert.True(t, tokenIdx, "sessions.token has no index")
	assert.True(t, refreshIdx, "sessions.refresh_token has no index")
}
