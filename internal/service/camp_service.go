package service

import (
	"fmt"

	"obozy/internal/db"
	"obozy/internal/repository"
)

// CampService backs both the public catalog endpoints the wizard fetches and
// the admin panel's camp/turnus management.
type CampService struct {
	Repo *repository.CampRepository
}

func NewCampService(repo *repository.CampRepository) *CampService {
	return &CampService{Repo: repo}
}

func (s *CampService) ListCamps(onlyActive bool) ([]db.Camp, error) {
	return s.Repo.ListCamps(onlyActive)
}

func (s *CampService) GetCamp(id int) (*db.Camp, error) {
	return s.Repo.GetCamp(id)
}

func (s *CampService) CreateCamp(c *db.Camp) error {
	if c.Name == "" {
		return fmt.Errorf("camp name cannot be empty")
	}
	return s.Repo.CreateCamp(c)
}

func (s *CampService) UpdateCamp(c *db.Camp) error {
	return s.Repo.UpdateCamp(c)
}

func (s *CampService) ListEditions(campID int) ([]db.CampProperty, error) {
	return s.Repo.ListEditions(campID)
}

func (s *CampService) GetProperty(campID, propertyID int) (*db.CampProperty, error) {
	return s.Repo.GetProperty(campID, propertyID)
}

func (s *CampService) UpdateProperty(p *db.CampProperty) error {
	if !p.EndDate.After(p.StartDate) {
		return fmt.Errorf("end_date must be after start_date")
	}
	return s.Repo.UpdateProperty(p)
}

func (s *CampService) ListDiets(propertyID int) ([]db.Diet, error) {
	return s.Repo.ListDiets(propertyID)
}

func (s *CampService) CreateDiet(d *db.Diet) error {
	if d.Name == "" {
		return fmt.Errorf("diet name cannot be empty")
	}
	return s.Repo.CreateDiet(d)
}

func (s *CampService) UpdateDiet(d *db.Diet) error {
	return s.Repo.UpdateDiet(d)
}

func (s *CampService) DeleteDiet(propertyID, dietID int) error {
	return s.Repo.DeleteDiet(propertyID, dietID)
}

func (s *CampService) ListTransportCities(propertyID int, onlyActive bool) ([]db.TransportCity, error) {
	return s.Repo.ListTransportCities(propertyID, onlyActive)
}

func (s *CampService) ReplaceTransportCities(propertyID int, cities []db.TransportCity) error {
	for _, c := range cities {
		if c.Name == "" {
			return fmt.Errorf("transport city name cannot be empty")
		}
		if c.Price < 0 {
			return fmt.Errorf("transport city %q has negative price", c.Name)
		}
	}
	return s.Repo.ReplaceTransportCities(propertyID, cities)
}

func (s *CampService) DeleteTransportCities(propertyID int) error {
	return s.Repo.DeleteTransportCities(propertyID)
}

func (s *CampService) ListAvailableTransportCities() ([]string, error) {
	return s.Repo.ListAvailableTransportCities()
}

func (s *CampService) ListPublicAddons() ([]db.Addon, error) {
	return s.Repo.ListPublicAddons()
}

func (s *CampService) ListAddonDescriptions(addonID string) ([]db.Addon, error) {
	return s.Repo.ListAddonDescriptions(addonID)
}

func (s *CampService) ListPublicProtections() ([]db.Protection, error) {
	return s.Repo.ListPublicProtections()
}

func (s *CampService) ListPublicPromotions() ([]db.Promotion, error) {
	return s.Repo.ListPublicPromotions()
}

func (s *CampService) ListPublicDocuments() ([]db.DocumentTemplate, error) {
	return s.Repo.ListPublicDocuments()
}
