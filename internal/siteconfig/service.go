package siteconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidBanner = errors.New("invalid banner")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Site, error) {
	return s.repo.Get(ctx)
}

// UpdateBanners replaces the home-page banner list. Every banner needs an
// image reference.
func (s *Service) UpdateBanners(ctx context.Context, banners []Banner) error {
	for _, b := range banners {
		if strings.TrimSpace(b.Image) == "" {
			return fmt.Errorf("%w: image is required", ErrInvalidBanner)
		}
	}
	if banners == nil {
		banners = []Banner{}
	}
	return s.repo.SetBanners(ctx, banners)
}

// UpdateNavbarBanner saves the announcement strip, filling default colors
// and stamping SavedAt so the countdown can be derived later.
func (s *Service) UpdateNavbarBanner(ctx context.Context, b NavbarBanner) error {
	if b.BgColor == "" {
		b.BgColor = DefaultBgColor
	}
	if b.TextColor == "" {
		b.TextColor = DefaultTextColor
	}
	if b.TimeLeft < 0 {
		return fmt.Errorf("%w: timeLeft must not be negative", ErrInvalidBanner)
	}
	b.SavedAt = time.Now()
	return s.repo.SetNavbarBanner(ctx, b)
}
