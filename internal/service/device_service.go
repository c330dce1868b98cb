package service

import (
	"context"

	"pokerpot/internal/model"
	"pokerpot/internal/repository"

	"gorm.io/gorm"
)

// DeviceService 设备注册
// 未登录客户端拿一个设备ID，用来找回自己创建的奖池
type DeviceService struct {
	deviceRepo *repository.DeviceRepository
}

func NewDeviceService(db *gorm.DB) *DeviceService {
	return &DeviceService{
		deviceRepo: repository.NewDeviceRepository(db),
	}
}

func (s *DeviceService) Register(ctx context.Context) (*model.Device, error) {
	device := &model.Device{}
	if err := s.deviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}
