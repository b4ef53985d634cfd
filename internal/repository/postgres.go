// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/craudioviz/partner-portal/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrApplicationExists возвращается при попытке подать вторую заявку для того же пользователя.
var (
	ErrApplicationExists = errors.New("application already exists for this user")
	// ErrApplicationNotFound возвращается, если заявка пользователя не найдена.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrPartnerNotFound возвращается, если партнёр не найден.
	ErrPartnerNotFound = errors.New("partner not found")
	// ErrLeadNotFound возвращается, если лид не найден или принадлежит другому партнёру.
	ErrLeadNotFound = errors.New("lead not found")
	// ErrProductNotFound возвращается, если продукт не найден.
	ErrProductNotFound = errors.New("product not found")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// GetPartnerByUserID возвращает партнёра по идентификатору пользователя внешнего identity-сервиса.
func (r *PostgresRepository) GetPartnerByUserID(ctx context.Context, userID string) (*model.Partner, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, company_name, contact_name, email, phone, COALESCE(website, ''),
		        tier, status, commission_rate, total_sales, total_commissions,
		        leads_allocated, leads_converted, created_at, updated_at
		 FROM partners
		 WHERE user_id = $1`,
		userID,
	)

	var p model.Partner
	err := row.Scan(&p.ID, &p.UserID, &p.CompanyName, &p.ContactName, &p.Email, &p.Phone, &p.Website,
		&p.Tier, &p.Status, &p.CommissionRate, &p.TotalSales, &p.TotalCommissions,
		&p.LeadsAllocated, &p.LeadsConverted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("get partner: %w", err)
	}

	return &p, nil
}

// CreateApplication сохраняет заявку со статусом pending и возвращает сохранённую строку.
// Уникальный индекс по user_id гарантирует не более одной заявки на пользователя.
func (r *PostgresRepository) CreateApplication(ctx context.Context, app *model.PartnerApplication) (*model.PartnerApplication, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO partner_applications
		   (user_id, company_name, contact_name, email, phone, website,
		    business_type, years_in_business, sales_experience, target_markets,
		    expected_monthly_sales, how_heard_about_us, linkedin_url, reference_notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, status, created_at, updated_at`,
		app.UserID, app.CompanyName, app.ContactName, app.Email, app.Phone, app.Website,
		app.BusinessType, app.YearsInBusiness, app.SalesExperience, app.TargetMarkets,
		app.ExpectedMonthlySales, app.HowHeardAboutUs, app.LinkedinURL, app.References,
		string(model.ApplicationStatusPending),
	)

	stored := *app
	err := row.Scan(&stored.ID, &stored.Status, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrApplicationExists, app.UserID)
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	return &stored, nil
}

// GetApplicationByUserID возвращает заявку пользователя.
func (r *PostgresRepository) GetApplicationByUserID(ctx context.Context, userID string) (*model.PartnerApplication, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, company_name, contact_name, email, phone, COALESCE(website, ''),
		        business_type, years_in_business, sales_experience, target_markets,
		        expected_monthly_sales, how_heard_about_us, COALESCE(linkedin_url, ''),
		        COALESCE(reference_notes, ''), status, COALESCE(reviewed_by, ''),
		        COALESCE(review_notes, ''), created_at, updated_at
		 FROM partner_applications
		 WHERE user_id = $1`,
		userID,
	)

	var a model.PartnerApplication
	err := row.Scan(&a.ID, &a.UserID, &a.CompanyName, &a.ContactName, &a.Email, &a.Phone, &a.Website,
		&a.BusinessType, &a.YearsInBusiness, &a.SalesExperience, &a.TargetMarkets,
		&a.ExpectedMonthlySales, &a.HowHeardAboutUs, &a.LinkedinURL,
		&a.References, &a.Status, &a.ReviewedBy, &a.ReviewNotes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}

	return &a, nil
}

// GetLeadsByPartner возвращает лиды партнёра, новые первыми.
func (r *PostgresRepository) GetLeadsByPartner(ctx context.Context, partnerID int64) ([]model.Lead, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, partner_id, company_name, contact_name, email, COALESCE(phone, ''),
		        source, status, estimated_value, COALESCE(notes, ''),
		        contact_deadline, close_deadline, created_at, updated_at
		 FROM leads
		 WHERE partner_id = $1
		 ORDER BY created_at DESC`,
		partnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.PartnerID, &l.CompanyName, &l.ContactName, &l.Email, &l.Phone,
			&l.Source, &l.Status, &l.EstimatedValue, &l.Notes,
			&l.ContactDeadline, &l.CloseDeadline, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return leads, nil
}

// UpdateLeadStatus устанавливает статус лида. Граф переходов не проверяется.
func (r *PostgresRepository) UpdateLeadStatus(ctx context.Context, partnerID, leadID int64, status model.LeadStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE leads SET status = $3, updated_at = now() WHERE id = $1 AND partner_id = $2`,
		leadID, partnerID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}

	return nil
}

// MarkExpiredLeads помечает просроченные лиды статусом expired и возвращает число затронутых строк.
// Лиды в терминальных статусах не трогаются.
func (r *PostgresRepository) MarkExpiredLeads(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE leads
		 SET status = $1, updated_at = now()
		 WHERE close_deadline < $2 AND status NOT IN ($3, $4, $5)`,
		string(model.LeadStatusExpired), now,
		string(model.LeadStatusWon), string(model.LeadStatusLost), string(model.LeadStatusExpired),
	)
	if err != nil {
		return 0, fmt.Errorf("mark expired leads: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// GetDealsByPartner возвращает сделки партнёра, новые первыми.
func (r *PostgresRepository) GetDealsByPartner(ctx context.Context, partnerID int64) ([]model.Deal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, partner_id, lead_id, product_id, customer_name, customer_email,
		        deal_value, commission_rate, commission_amount, status, payment_status,
		        clawback_eligible_until, COALESCE(notes, ''), closed_at, created_at, updated_at
		 FROM deals
		 WHERE partner_id = $1
		 ORDER BY created_at DESC`,
		partnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select deals: %w", err)
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		var d model.Deal
		if err := rows.Scan(&d.ID, &d.PartnerID, &d.LeadID, &d.ProductID, &d.CustomerName, &d.CustomerEmail,
			&d.DealValue, &d.CommissionRate, &d.CommissionAmount, &d.Status, &d.PaymentStatus,
			&d.ClawbackEligibleUntil, &d.Notes, &d.ClosedAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		deals = append(deals, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return deals, nil
}

// CreateDeal сохраняет сделку и возвращает сохранённую строку.
// commission_amount записывается один раз и далее считается источником истины для выплат.
func (r *PostgresRepository) CreateDeal(ctx context.Context, d *model.Deal) (*model.Deal, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO deals
		   (partner_id, lead_id, product_id, customer_name, customer_email,
		    deal_value, commission_rate, commission_amount, status, payment_status,
		    clawback_eligible_until, notes, closed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		d.PartnerID, d.LeadID, d.ProductID, d.CustomerName, d.CustomerEmail,
		d.DealValue, d.CommissionRate, d.CommissionAmount, string(d.Status), string(d.PaymentStatus),
		d.ClawbackEligibleUntil, d.Notes, d.ClosedAt,
	)

	stored := *d
	if err := row.Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}

	return &stored, nil
}

// GetActiveProducts возвращает активные позиции каталога, младшие tier первыми.
func (r *PostgresRepository) GetActiveProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, tier, difficulty, base_price,
		        commission_year1, commission_recurring, target_buyer, sales_cycle_days,
		        training_required, new_product_bonus, bonus_expires_at, active, created_at, updated_at
		 FROM products
		 WHERE active
		 ORDER BY tier, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Tier, &p.Difficulty, &p.BasePrice,
			&p.CommissionYear1, &p.CommissionRecurring, &p.TargetBuyer, &p.SalesCycleDays,
			&p.TrainingRequired, &p.NewProductBonus, &p.BonusExpiresAt, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// GetProductByID возвращает позицию каталога по идентификатору.
func (r *PostgresRepository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, description, tier, difficulty, base_price,
		        commission_year1, commission_recurring, target_buyer, sales_cycle_days,
		        training_required, new_product_bonus, bonus_expires_at, active, created_at, updated_at
		 FROM products
		 WHERE id = $1`,
		id,
	)

	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Tier, &p.Difficulty, &p.BasePrice,
		&p.CommissionYear1, &p.CommissionRecurring, &p.TargetBuyer, &p.SalesCycleDays,
		&p.TrainingRequired, &p.NewProductBonus, &p.BonusExpiresAt, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// GetDocumentsForTiers возвращает документы, доступные на перечисленных уровнях.
// Пустой набор уровней даёт пустой результат — неизвестный уровень партнёра ничего не открывает.
func (r *PostgresRepository) GetDocumentsForTiers(ctx context.Context, tiers []model.PartnerTier) ([]model.Document, error) {
	if len(tiers) == 0 {
		return nil, nil
	}

	tierStrs := make([]string, len(tiers))
	for i, t := range tiers {
		tierStrs[i] = string(t)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, category, file_url, file_type, file_size,
		        partner_tier_required, downloads, created_at, updated_at
		 FROM documents
		 WHERE partner_tier_required = ANY($1)
		 ORDER BY created_at DESC`,
		tierStrs,
	)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.Category, &d.FileURL, &d.FileType, &d.FileSize,
			&d.PartnerTierRequired, &d.Downloads, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return docs, nil
}
