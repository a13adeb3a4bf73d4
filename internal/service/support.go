package service

import (
	"context"

	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/internal/repo"
)

type SupportService struct {
	Repo     *repo.GormRepo
	WhatsApp string
}

type Contact struct {
	WhatsApp string `json:"whatsapp"`
	Message  string `json:"message"`
}

func (s *SupportService) FAQs(ctx context.Context) ([]models.FAQ, error) {
	return s.Repo.ListFAQs(ctx)
}

func (s *SupportService) Contact() Contact {
	return Contact{
		WhatsApp: s.WhatsApp,
		Message:  "Contact our support team on WhatsApp for help with orders and equipment.",
	}
}
