package postgres

// Schema is the full DDL for the billing store. Statements are idempotent so
// the seed binary and the integration test harness can both apply it to a
// fresh or existing database.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
  id             TEXT PRIMARY KEY,
  email          TEXT NOT NULL,
  restaurant_id  TEXT NOT NULL DEFAULT '',
  setup_fee_paid BOOLEAN NOT NULL DEFAULT FALSE,
  registered_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS plans (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL,
  duration_months INT NOT NULL,
  price_inr       DOUBLE PRECISION NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS coupons (
  code             TEXT PRIMARY KEY,
  type             TEXT NOT NULL,
  value            DOUBLE PRECISION NOT NULL,
  is_active        BOOLEAN NOT NULL DEFAULT TRUE,
  start_date       TIMESTAMPTZ NOT NULL,
  end_date         TIMESTAMPTZ NOT NULL,
  used_count       INT NOT NULL DEFAULT 0,
  max_usage        INT NOT NULL,
  applicable_plans TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS payments (
  id           TEXT PRIMARY KEY,
  user_id      TEXT NOT NULL,
  order_id     TEXT NOT NULL,
  amount       DOUBLE PRECISION NOT NULL,
  currency     TEXT NOT NULL,
  is_setup_fee BOOLEAN NOT NULL,
  coupon_used  TEXT NOT NULL DEFAULT '',
  plan_id      TEXT NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL,
  processed_by TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS subscriptions (
  user_id         TEXT PRIMARY KEY,
  status          TEXT NOT NULL,
  plan_id         TEXT NOT NULL,
  plan_name       TEXT NOT NULL,
  started_at      TIMESTAMPTZ NOT NULL,
  expires_at      TIMESTAMPTZ NOT NULL,
  paid_amount     DOUBLE PRECISION NOT NULL,
  last_payment_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS subscription_history (
  id              TEXT PRIMARY KEY,
  user_id         TEXT NOT NULL,
  plan_id         TEXT NOT NULL,
  plan_name       TEXT NOT NULL,
  started_at      TIMESTAMPTZ NOT NULL,
  expires_at      TIMESTAMPTZ NOT NULL,
  paid_amount     DOUBLE PRECISION NOT NULL,
  coupon_code     TEXT NOT NULL DEFAULT '',
  payment_id      TEXT NOT NULL,
  duration_months INT NOT NULL
);
CREATE INDEX IF NOT EXISTS subscription_history_user_idx ON subscription_history (user_id);

CREATE TABLE IF NOT EXISTS billing_config (
  id        INT PRIMARY KEY DEFAULT 1,
  setup_fee DOUBLE PRECISION NOT NULL
);
`
