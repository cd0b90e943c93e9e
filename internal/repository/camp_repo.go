package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"obozy/internal/db"
)

// CampRepository serves the camp/turnus catalogs: camps, editions, per-edition
// diets and transport cities, and the public addon/protection/promotion and
// document catalogs the wizard fetches.
type CampRepository struct {
	DB *sql.DB
}

func NewCampRepository(database *sql.DB) *CampRepository {
	return &CampRepository{DB: database}
}

func (r *CampRepository) ListCamps(onlyActive bool) ([]db.Camp, error) {
	query := `SELECT id, name, description, city, active, created_at, updated_at FROM camps`
	if onlyActive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var camps []db.Camp
	for rows.Next() {
		var c db.Camp
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.City, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		camps = append(camps, c)
	}
	return camps, rows.Err()
}

func (r *CampRepository) GetCamp(id int) (*db.Camp, error) {
	var c db.Camp
	err := r.DB.QueryRow(
		`SELECT id, name, description, city, active, created_at, updated_at FROM camps WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.City, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying camp %d: %w", id, err)
	}
	return &c, nil
}

func (r *CampRepository) CreateCamp(c *db.Camp) error {
	return r.DB.QueryRow(
		`INSERT INTO camps (name, description, city, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`,
		c.Name, c.Description, c.City, c.Active,
	).Scan(&c.ID)
}

func (r *CampRepository) UpdateCamp(c *db.Camp) error {
	_, err := r.DB.Exec(
		`UPDATE camps SET name = $2, description = $3, city = $4, active = $5, updated_at = NOW() WHERE id = $1`,
		c.ID, c.Name, c.Description, c.City, c.Active,
	)
	return err
}

func (r *CampRepository) ListEditions(campID int) ([]db.CampProperty, error) {
	rows, err := r.DB.Query(
		`SELECT id, camp_id, name, start_date, end_date, city, capacity, base_price
		 FROM camp_properties WHERE camp_id = $1 ORDER BY start_date`, campID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var editions []db.CampProperty
	for rows.Next() {
		var p db.CampProperty
		if err := rows.Scan(&p.ID, &p.CampID, &p.Name, &p.StartDate, &p.EndDate, &p.City, &p.Capacity, &p.BasePrice); err != nil {
			return nil, err
		}
		editions = append(editions, p)
	}
	return editions, rows.Err()
}

func (r *CampRepository) GetProperty(campID, propertyID int) (*db.CampProperty, error) {
	var p db.CampProperty
	err := r.DB.QueryRow(
		`SELECT id, camp_id, name, start_date, end_date, city, capacity, base_price
		 FROM camp_properties WHERE id = $1 AND camp_id = $2`, propertyID, campID,
	).Scan(&p.ID, &p.CampID, &p.Name, &p.StartDate, &p.EndDate, &p.City, &p.Capacity, &p.BasePrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying property %d of camp %d: %w", propertyID, campID, err)
	}
	return &p, nil
}

func (r *CampRepository) UpdateProperty(p *db.CampProperty) error {
	_, err := r.DB.Exec(
		`UPDATE camp_properties SET name = $3, start_date = $4, end_date = $5, city = $6, capacity = $7, base_price = $8
		 WHERE id = $1 AND camp_id = $2`,
		p.ID, p.CampID, p.Name, p.StartDate, p.EndDate, p.City, p.Capacity, p.BasePrice,
	)
	return err
}

func (r *CampRepository) ListDiets(propertyID int) ([]db.Diet, error) {
	rows, err := r.DB.Query(
		`SELECT id, property_id, name, price, COALESCE(icon_url, '') FROM diets WHERE property_id = $1 ORDER BY name`,
		propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diets []db.Diet
	for rows.Next() {
		var d db.Diet
		if err := rows.Scan(&d.ID, &d.PropertyID, &d.Name, &d.Price, &d.IconURL); err != nil {
			return nil, err
		}
		diets = append(diets, d)
	}
	return diets, rows.Err()
}

func (r *CampRepository) CreateDiet(d *db.Diet) error {
	return r.DB.QueryRow(
		`INSERT INTO diets (property_id, name, price, icon_url) VALUES ($1, $2, $3, $4) RETURNING id`,
		d.PropertyID, d.Name, d.Price, d.IconURL,
	).Scan(&d.ID)
}

func (r *CampRepository) UpdateDiet(d *db.Diet) error {
	_, err := r.DB.Exec(
		`UPDATE diets SET name = $3, price = $4, icon_url = $5 WHERE id = $1 AND property_id = $2`,
		d.ID, d.PropertyID, d.Name, d.Price, d.IconURL,
	)
	return err
}

func (r *CampRepository) DeleteDiet(propertyID, dietID int) error {
	_, err := r.DB.Exec(`DELETE FROM diets WHERE id = $1 AND property_id = $2`, dietID, propertyID)
	return err
}

func (r *CampRepository) ListTransportCities(propertyID int, onlyActive bool) ([]db.TransportCity, error) {
	query := `SELECT id, property_id, name, price, active FROM transport_cities WHERE property_id = $1`
	if onlyActive {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []db.TransportCity
	for rows.Next() {
		var c db.TransportCity
		if err := rows.Scan(&c.ID, &c.PropertyID, &c.Name, &c.Price, &c.Active); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// ReplaceTransportCities swaps the whole city assignment of a property in one
// transaction, the PUT semantics of the transport admin endpoint.
func (r *CampRepository) ReplaceTransportCities(propertyID int, cities []db.TransportCity) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM transport_cities WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("error clearing transport cities for property %d: %w", propertyID, err)
	}
	for _, c := range cities {
		if _, err := tx.Exec(
			`INSERT INTO transport_cities (property_id, name, price, active) VALUES ($1, $2, $3, $4)`,
			propertyID, c.Name, c.Price, c.Active,
		); err != nil {
			return fmt.Errorf("error inserting transport city %q: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

func (r *CampRepository) DeleteTransportCities(propertyID int) error {
	_, err := r.DB.Exec(`DELETE FROM transport_cities WHERE property_id = $1`, propertyID)
	return err
}

// ListAvailableTransportCities returns the distinct city names known across
// all properties, the palette an admin assigns from.
func (r *CampRepository) ListAvailableTransportCities() ([]string, error) {
	rows, err := r.DB.Query(`SELECT DISTINCT name FROM transport_cities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *CampRepository) ListPublicAddons() ([]db.Addon, error) {
	rows, err := r.DB.Query(
		`SELECT id, name, price, COALESCE(icon, ''), COALESCE(description, ''), active
		 FROM addons WHERE active = TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addons []db.Addon
	for rows.Next() {
		var a db.Addon
		if err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.Icon, &a.Description, &a.Active); err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, rows.Err()
}

func (r *CampRepository) ListPublicProtections() ([]db.Protection, error) {
	rows, err := r.DB.Query(
		`SELECT id, name, price, COALESCE(description, ''), active
		 FROM protections WHERE active = TRUE ORDER BY price`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var protections []db.Protection
	for rows.Next() {
		var p db.Protection
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Active); err != nil {
			return nil, err
		}
		protections = append(protections, p)
	}
	return protections, rows.Err()
}

func (r *CampRepository) ListPublicPromotions() ([]db.Promotion, error) {
	rows, err := r.DB.Query(
		`SELECT id, name, price, requires_justification, active
		 FROM promotions WHERE active = TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []db.Promotion
	for rows.Next() {
		var p db.Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.RequiresJustification, &p.Active); err != nil {
			return nil, err
		}
		promotions = append(promotions, p)
	}
	return promotions, rows.Err()
}

func (r *CampRepository) ListPublicDocuments() ([]db.DocumentTemplate, error) {
	rows, err := r.DB.Query(`SELECT id, name, type, content FROM document_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []db.DocumentTemplate
	for rows.Next() {
		var d db.DocumentTemplate
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.Content); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ListAddonDescriptions serves the long-form addon content blocks shown on the
// public addons page, filtered per addon when requested.
func (r *CampRepository) ListAddonDescriptions(addonID string) ([]db.Addon, error) {
	query := `SELECT id, name, price, COALESCE(icon, ''), COALESCE(description, ''), active FROM addons WHERE active = TRUE`
	args := []interface{}{}
	if addonID != "" {
		id, err := strconv.Atoi(addonID)
		if err != nil {
			return nil, fmt.Errorf("invalid addon id %q", addonID)
		}
		query += ` AND id = $1`
		args = append(args, id)
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addons []db.Addon
	for rows.Next() {
		var a db.Addon
		if err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.Icon, &a.Description, &a.Active); err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, rows.Err()
}
