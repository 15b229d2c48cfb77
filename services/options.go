package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kendall-kelly/baskets-api/database"
	"github.com/kendall-kelly/baskets-api/models"
)

type serviceOptions struct {
	now    func() time.Time
	audit  AuditLog
	cache  DeliveryCache
	txOpts database.TxOptions
}

// Option configures a service
type Option func(*serviceOptions)

// WithClock sets the time source used for deadline checks
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// WithAuditLog sets where order mutations are recorded
func WithAuditLog(audit AuditLog) Option {
	return func(o *serviceOptions) {
		o.audit = audit
	}
}

// WithDeliveryCache sets the delivery detail cache
func WithDeliveryCache(cache DeliveryCache) Option {
	return func(o *serviceOptions) {
		o.cache = cache
	}
}

// WithTxOptions overrides transaction isolation and retry settings
func WithTxOptions(opts database.TxOptions) Option {
	return func(o *serviceOptions) {
		o.txOpts = opts
	}
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{
		now:    time.Now,
		audit:  NoopAuditLog{},
		cache:  NoopDeliveryCache{},
		txOpts: database.DefaultTxOptions(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o serviceOptions) today() time.Time {
	return models.DateOf(o.now())
}

// fail logs a failed operation and wraps infrastructure errors. Business-rule
// rejections are returned unchanged.
func (o serviceOptions) fail(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.Error(err))
	if KindOf(err) != "" {
		zap.L().Info("Rejected "+op, fields...)
		return err
	}
	zap.L().Error("Failed to "+op, fields...)
	return fmt.Errorf("failed to %s: %w", op, err)
}
