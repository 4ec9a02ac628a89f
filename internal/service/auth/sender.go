package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/logger"
)

// ConfirmationSender delivers registration confirmation codes.
// Real email delivery lives behind this interface; the default sender only
// logs the code, which is enough for local runs and tests
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, email string, code uuid.UUID) error
}

type LogSender struct {
	Logger logger.Logger
}

func (s LogSender) SendConfirmation(ctx context.Context, email string, code uuid.UUID) error {
	s.Logger.Info("confirmation code issued", "email", email, "code", code.String())
	return nil
}
