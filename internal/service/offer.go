package service

import (
	"context"

	"github.com/pharmalink/ledger/internal/api/dto"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
)

type OfferService = interfaces.OfferService

type offerService struct {
	ServiceParams
}

func NewOfferService(params ServiceParams) OfferService {
	return &offerService{
		ServiceParams: params,
	}
}

func (s *offerService) CreateOffer(ctx context.Context, req dto.CreateOfferRequest) (*dto.OfferResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o := req.ToOffer(ctx)

	existing, err := s.OfferRepo.GetByCode(ctx, o.Code)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, ierr.NewError("offer code already exists").
			WithHintf("Promo code %s is already in use", o.Code).
			WithReportableDetails(map[string]any{"code": o.Code}).
			Mark(ierr.ErrAlreadyExists)
	}

	if err := s.OfferRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return &dto.OfferResponse{Offer: o}, nil
}

func (s *offerService) GetOffer(ctx context.Context, id string) (*dto.OfferResponse, error) {
	o, err := s.OfferRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.OfferResponse{Offer: o}, nil
}
