package messaging

import (
	"context"
	"errors"
	"testing"

	"geekgalaxy_pos/internal/domain/entities"
	mock_interfaces "geekgalaxy_pos/internal/usecase/interfaces/mocks"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFanOutNotifier_CallsEverySink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mock_interfaces.NewMockIFinancialNotifier(ctrl)
	second := mock_interfaces.NewMockIFinancialNotifier(ctrl)
	sale := cancelledSale()

	boom := errors.New("refund failed")
	first.EXPECT().NotifyCancellation(gomock.Any(), sale).Return(boom)
	second.EXPECT().NotifyCancellation(gomock.Any(), sale).Return(nil)

	err := NewFanOutNotifier(first, second).NotifyCancellation(context.Background(), sale)
	assert.ErrorIs(t, err, boom)
}

func TestFanOutNotifier_Empty(t *testing.T) {
	assert.NoError(t, NewFanOutNotifier().NotifyCancellation(context.Background(), entities.Sale{}))
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	assert.NoError(t, n.NotifyCancellation(context.Background(), cancelledSale()))
	entries := logs.FilterField(zap.String("sale_id", "sale-1")).All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "75.00", entries[0].ContextMap()["total"])
}
