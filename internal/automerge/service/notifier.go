package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tributaryhq/tributary/internal/automerge/domain"
	organizationdomain "github.com/tributaryhq/tributary/internal/organization/domain"
)

// logNotifier publishes auto-merge events to the structured log. A
// webhook or email notifier satisfies the same interface.
type logNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) domain.Notifier {
	return &logNotifier{log: log.Named("automerge.notifier")}
}

func (n *logNotifier) AutoMergePerformed(_ context.Context, record organizationdomain.AutoMergeRecord) {
	n.log.Info("auto-merge performed",
		zap.String("primary_id", record.PrimaryID),
		zap.String("primary_name", record.PrimaryName),
		zap.String("merged_id", record.MergedID),
		zap.String("merged_name", record.MergedName),
		zap.Float64("confidence", record.Confidence),
		zap.Strings("shared_identities", record.SharedIdentities),
	)
}
