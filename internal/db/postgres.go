// PostgreSQL 연결 초기화 유틸
//
// 접속 정보는 config.PostgresConfig(DATABASE_URL 또는 PG* 환경변수)로 전달됨.
// DB는 아카이브/인증/유사 장애 검색용이며, 오케스트레이터의 source of truth는
// 인메모리 store 레이어. DB가 없어도 오케스트레이션은 정상 동작한다.

package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/data-sentry/backend/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgresPool(ctx context.Context, pgCfg config.PostgresConfig) (*pgxpool.Pool, error) {
	dsn, err := buildPostgresURL(pgCfg)
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}

func buildPostgresURL(pgCfg config.PostgresConfig) (string, error) {
	if pgCfg.DatabaseURL != "" {
		return pgCfg.DatabaseURL, nil
	}

	if pgCfg.User == "" || pgCfg.Database == "" {
		return "", fmt.Errorf("missing required env: DATABASE_URL or PGUSER/PGDATABASE")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(pgCfg.Host, pgCfg.Port),
		Path:   "/" + pgCfg.Database,
	}
	if pgCfg.Password == "" {
		u.User = url.User(pgCfg.User)
	} else {
		u.User = url.UserPassword(pgCfg.User, pgCfg.Password)
	}
	q := u.Query()
	q.Set("sslmode", pgCfg.SSLMode)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
