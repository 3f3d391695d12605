// Package testutils holds mocks and fixtures shared by package tests.
package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"

	"city-weather/models"
	"city-weather/resolver"
)

type MockCityLoader struct {
	mock.Mock
}

func (m *MockCityLoader) LoadByCityName(ctx context.Context, name string) (*models.CityViewModel, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CityViewModel), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string) []models.CityCandidate {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return []models.CityCandidate{}
	}
	return args.Get(0).([]models.CityCandidate)
}

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Locate(ctx context.Context, geo resolver.Geolocator) (string, models.Coordinates, error) {
	args := m.Called(ctx, geo)
	return args.String(0), args.Get(1).(models.Coordinates), args.Error(2)
}
