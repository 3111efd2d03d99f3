package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
)

// Notification is a fired alert with the drop that triggered it. For category alerts
// Drop is the biggest drop in the category and Drops the number of dropped products.
type Notification struct {
	Alert    models.Alert
	Product  *models.Product
	Category *models.Category
	Drop     Drop
	Drops    int
}

// Message renders the notification as plain text.
func (n Notification) Message() string {
	var b strings.Builder
	if n.Category != nil {
		fmt.Fprintf(&b, "Price drop in %s: %d product(s) got cheaper.\n", n.Category.Name, n.Drops)
		fmt.Fprintf(&b, "Biggest drop: %s\n", n.Drop.Name)
	} else {
		fmt.Fprintf(&b, "Price drop: %s\n", n.Drop.Name)
	}
	fmt.Fprintf(&b, "%s -> %s (-%s), your threshold %s",
		n.Drop.Previous.StringFixed(2), n.Drop.Current.StringFixed(2),
		n.Drop.Amount.StringFixed(2), n.Alert.Threshold.StringFixed(2))
	if n.Product != nil && n.Product.URL != "" {
		fmt.Fprintf(&b, "\n%s", n.Product.URL)
	}

	return b.String()
}

// Notifier delivers fired alerts to their owners.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes fired alerts to the log. It is used when no chat transport is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	l.log.InfoContext(ctx, "Price alert fired",
		"alert", n.Alert.ID,
		"user", n.Alert.UserID,
		"product", n.Drop.ProductID,
		"current", n.Drop.Current,
		"previous", n.Drop.Previous,
		"threshold", n.Alert.Threshold,
	)

	return nil
}

// MultiNotifier fans a notification out to several notifiers and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		errs = append(errs, notifier.Notify(ctx, n))
	}

	return errors.Join(errs...)
}
