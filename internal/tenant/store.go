// Package tenant loads per-customer embed configuration: whitelisted
// domains, watermark logos and style presets.
package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stairviz/internal/domain"
	"stairviz/internal/sqlinline"
)

// Store resolves tenant settings.
type Store interface {
	Settings(ctx context.Context, tenantID string) (domain.TenantSettings, error)
}

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Settings loads the tenant row plus its presets.
func (s *PGStore) Settings(ctx context.Context, tenantID string) (domain.TenantSettings, error) {
	var out domain.TenantSettings
	row := s.pool.QueryRow(ctx, sqlinline.QSelectTenantSettings, tenantID)
	if err := row.Scan(&out.ID, &out.Name, &out.EmbedWhitelist, &out.WatermarkURL, &out.LogoURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TenantSettings{}, domain.ErrTenantNotConfigured
		}
		return domain.TenantSettings{}, fmt.Errorf("tenant: load settings: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlinline.QSelectTenantPresets, tenantID)
	if err != nil {
		return domain.TenantSettings{}, fmt.Errorf("tenant: load presets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.StylePresetInfo
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.ReferenceURL, &p.PricePerFtMin, &p.PricePerFtMax); err != nil {
			return domain.TenantSettings{}, fmt.Errorf("tenant: scan preset: %w", err)
		}
		out.Presets = append(out.Presets, p)
	}
	if err := rows.Err(); err != nil {
		return domain.TenantSettings{}, fmt.Errorf("tenant: read presets: %w", err)
	}
	return out, nil
}

var _ Store = (*PGStore)(nil)

// StaticStore serves a fixed tenant map. Used in tests and single-tenant
// deployments without a database.
type StaticStore struct {
	tenants map[string]domain.TenantSettings
}

// NewStaticStore constructs a StaticStore from the given settings.
func NewStaticStore(settings ...domain.TenantSettings) *StaticStore {
	m := make(map[string]domain.TenantSettings, len(settings))
	for _, s := range settings {
		m[s.ID] = s
	}
	return &StaticStore{tenants: m}
}

// Settings returns the configured tenant or domain.ErrTenantNotConfigured.
func (s *StaticStore) Settings(ctx context.Context, tenantID string) (domain.TenantSettings, error) {
	t, ok := s.tenants[tenantID]
	if !ok {
		return domain.TenantSettings{}, domain.ErrTenantNotConfigured
	}
	return t, nil
}

var _ Store = (*StaticStore)(nil)
