package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS stores (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	description   TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL DEFAULT 'PHYSICAL',
	contact_email TEXT NOT NULL DEFAULT '',
	contact_phone TEXT NOT NULL DEFAULT '',
	street        TEXT NOT NULL DEFAULT '',
	city          TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL DEFAULT '',
	country       TEXT NOT NULL DEFAULT '',
	postal_code   TEXT NOT NULL DEFAULT '',
	flag          TEXT NOT NULL DEFAULT 'ENABLED',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inventory (
	id                BIGSERIAL PRIMARY KEY,
	book_id           BIGINT NOT NULL,
	store_id          BIGINT NOT NULL REFERENCES stores(id),
	total_copies      INT NOT NULL CHECK (total_copies >= 0),
	available_copies  INT NOT NULL CHECK (available_copies >= 0 AND available_copies <= total_copies),
	status            TEXT NOT NULL,
	last_restocked_at TIMESTAMPTZ,
	flag              TEXT NOT NULL DEFAULT 'ENABLED',
	version           BIGINT NOT NULL DEFAULT 1,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS inventory_book_store_enabled
	ON inventory (book_id, store_id) WHERE flag = 'ENABLED';

CREATE TABLE IF NOT EXISTS inventory_transactions (
	id               BIGSERIAL PRIMARY KEY,
	inventory_id     BIGINT NOT NULL REFERENCES inventory(id),
	transaction_ref  TEXT NOT NULL UNIQUE,
	book_id          BIGINT NOT NULL,
	user_id          BIGINT,
	reason           TEXT NOT NULL DEFAULT '',
	quantity         INT NOT NULL CHECK (quantity > 0),
	action           TEXT NOT NULL,
	flag             TEXT NOT NULL DEFAULT 'ENABLED',
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS inventory_transactions_inventory
	ON inventory_transactions (inventory_id, id);
`

// EnsureSchema creates the ledger tables if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
