// Package qrcode creates merchant payment QR codes. The PNG is rendered once
// at creation and stored as a data URL, so serving a code never re-renders.
package qrcode

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	qrc "github.com/skip2/go-qrcode"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/audit"
)

var ErrQRCodeNotFound = errors.New("QR code not found")

const imageSize = 256

type CreateRequest struct {
	Name        string
	Amount      *float64
	Description string
}

type Service interface {
	Create(ctx context.Context, merchantID uint, req CreateRequest) (*models.QRCode, error)
	List(ctx context.Context, merchantID uint) ([]models.QRCode, error)
	// Scan resolves a code for a paying customer and bumps its scan counter.
	// Inactive codes resolve as not found.
	Scan(ctx context.Context, id uint) (*models.QRCode, error)
	Get(ctx context.Context, merchantID, id uint) (*models.QRCode, error)
	SetActive(ctx context.Context, merchantID, id uint, active bool) (*models.QRCode, error)
}

type service struct {
	repo      repositories.QRCodeRepository
	audit     audit.Service
	clientURL string
	log       zerolog.Logger
}

func NewService(repo repositories.QRCodeRepository, auditSvc audit.Service, clientURL string, log zerolog.Logger) Service {
	if repo == nil {
		panic("qr code repository is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	return &service{
		repo:      repo,
		audit:     auditSvc,
		clientURL: clientURL,
		log:       log.With().Str("component", "qrcode").Logger(),
	}
}

func (s *service) Create(ctx context.Context, merchantID uint, req CreateRequest) (*models.QRCode, error) {
	qr := &models.QRCode{
		MerchantID:  merchantID,
		Name:        req.Name,
		Amount:      req.Amount,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, qr); err != nil {
		return nil, fmt.Errorf("create qr code: %w", err)
	}

	// The encoded target needs the row ID, so render after the insert.
	target := fmt.Sprintf("%s/qr/%d", s.clientURL, qr.ID)
	png, err := qrc.Encode(target, qrc.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("render qr image: %w", err)
	}
	qr.ImageURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	if err := s.repo.Update(ctx, qr); err != nil {
		return nil, fmt.Errorf("store qr image: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     models.ActionQRCodeCreated,
		Resource:   "QRCode",
		ResourceID: fmt.Sprint(qr.ID),
		Details:    models.JSON{"name": qr.Name},
	})

	return qr, nil
}

func (s *service) List(ctx context.Context, merchantID uint) ([]models.QRCode, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

func (s *service) Scan(ctx context.Context, id uint) (*models.QRCode, error) {
	qr, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrQRCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	if !qr.IsActive {
		return nil, ErrQRCodeNotFound
	}

	if err := s.repo.IncrementScanCount(ctx, qr.ID); err != nil {
		s.log.Error().Err(err).Uint("qr_id", qr.ID).Msg("scan count update failed")
	} else {
		qr.ScanCount++
	}
	return qr, nil
}

func (s *service) Get(ctx context.Context, merchantID, id uint) (*models.QRCode, error) {
	qr, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrQRCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	if qr.MerchantID != merchantID {
		return nil, ErrQRCodeNotFound
	}
	return qr, nil
}

func (s *service) SetActive(ctx context.Context, merchantID, id uint, active bool) (*models.QRCode, error) {
	qr, err := s.Get(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	qr.IsActive = active
	if err := s.repo.Update(ctx, qr); err != nil {
		return nil, fmt.Errorf("update qr code: %w", err)
	}
	return qr, nil
}
