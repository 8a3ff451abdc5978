package logger

import (
	"time"

	"gorm.io/gorm"

	"github.com/mkarelin/sales-commission-service/internal/domain"
)

// OrderTransitionEvent is one audit row per workflow transition. Reject
// rows keep the REJECTED pseudo-status even though the order itself is
// reset to draft.
type OrderTransitionEvent struct {
	ID         uint `gorm:"primaryKey"`
	OrderID    string
	FromStatus string
	ToStatus   string
	ActorID    string
	Reason     string
	Timestamp  time.Time
}

type PGTransitionLogger struct {
	db *gorm.DB
}

func NewPGTransitionLogger(db *gorm.DB) *PGTransitionLogger {
	return &PGTransitionLogger{db: db}
}

func (l *PGTransitionLogger) LogTransition(orderID string, from, to domain.OrderStatus, actorID, reason string) error {
	return l.db.Create(&OrderTransitionEvent{
		OrderID:    orderID,
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorID:    actorID,
		Reason:     reason,
		Timestamp:  time.Now(),
	}).Error
}
