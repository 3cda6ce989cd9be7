package portfolio

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"adcalc/internal/modules/calculator"
)

// ErrNotFound is returned when a product id does not exist.
var ErrNotFound = errors.New("product not found")

// ProductRepository persists products in sqlite. Inputs and metrics are
// stored as JSON documents; metrics are recomputed on every write so the
// stored record never goes stale relative to its inputs.
type ProductRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, log zerolog.Logger) *ProductRepository {
	return &ProductRepository{
		db:  db,
		log: log.With().Str("repo", "products").Logger(),
	}
}

// Create stores a new product with a fresh id and computed metrics.
func (r *ProductRepository) Create(name string, inputs calculator.Inputs) (Product, error) {
	product := Product{
		ID:      uuid.New().String(),
		Name:    name,
		Inputs:  inputs,
		Metrics: calculator.Compute(inputs),
	}

	inputsJSON, metricsJSON, err := marshalProduct(product)
	if err != nil {
		return Product{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.Exec(`
		INSERT INTO products (id, name, inputs, metrics, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, product.ID, product.Name, inputsJSON, metricsJSON, now, now)
	if err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}

	r.log.Debug().Str("product_id", product.ID).Str("name", name).Msg("Product created")
	return product, nil
}

// Update replaces a product's name and inputs, recomputing its metrics.
func (r *ProductRepository) Update(id, name string, inputs calculator.Inputs) (Product, error) {
	product := Product{
		ID:      id,
		Name:    name,
		Inputs:  inputs,
		Metrics: calculator.Compute(inputs),
	}

	inputsJSON, metricsJSON, err := marshalProduct(product)
	if err != nil {
		return Product{}, err
	}

	result, err := r.db.Exec(`
		UPDATE products SET name = ?, inputs = ?, metrics = ?, updated_at = ?
		WHERE id = ?
	`, name, inputsJSON, metricsJSON, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}

	return product, nil
}

// Delete removes a product. Snapshots referencing it are intentionally left
// in place: the snapshot's product reference is a weak one.
func (r *ProductRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	r.log.Debug().Str("product_id", id).Msg("Product deleted")
	return nil
}

// Get returns one product by id.
func (r *ProductRepository) Get(id string) (Product, error) {
	row := r.db.QueryRow("SELECT id, name, inputs, metrics FROM products WHERE id = ?", id)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// List returns all products ordered by creation time.
func (r *ProductRepository) List() ([]Product, error) {
	rows, err := r.db.Query("SELECT id, name, inputs, metrics FROM products ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var product Product
	var inputsJSON, metricsJSON string

	if err := row.Scan(&product.ID, &product.Name, &inputsJSON, &metricsJSON); err != nil {
		return Product{}, err
	}

	if err := json.Unmarshal([]byte(inputsJSON), &product.Inputs); err != nil {
		return Product{}, fmt.Errorf("failed to decode product inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(metricsJSON), &product.Metrics); err != nil {
		return Product{}, fmt.Errorf("failed to decode product metrics: %w", err)
	}

	return product, nil
}

func marshalProduct(product Product) (string, string, error) {
	inputsJSON, err := json.Marshal(product.Inputs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode product inputs: %w", err)
	}
	metricsJSON, err := json.Marshal(product.Metrics)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode product metrics: %w", err)
	}
	return string(inputsJSON), string(metricsJSON), nil
}
