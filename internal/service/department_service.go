package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"procurement/internal/model"
	"procurement/internal/repository"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultDepartments is the directory loaded by SeedDepartments.
var DefaultDepartments = []string{
	"SUBCONT", "Blasting & Painting", "Canteen", "CLIENT - AL-SHAHEEN GALLAF",
	"CLIENT - CHANGHUA", "Client Equinor", "CLIENT SOFIA", "CLIENT - TENNET",
	"Contract", "E&l and Automation", "Engineering", "Finance", "HR & Admin",
	"HSE", "HSSE", "Internship", "IT", "IV-ONE", "TYM", "Machinery",
	"Marketing", "Operation & Maintenance", "Piping", "Planning", "PMT Beta",
	"PMT Changhua", "PMT Empire", "PMT Gamma", "PMT Nederwiek-Beta",
	"PMT Petrobas", "PMT Pluto", "PMT Sofia", "Procurement",
	"Project Management", "PT. Adiartha Suwabuana", "PT. Guna Sarana Konstruksi",
	"PT HENRY GLOBAL MANDIRI", "PT KARYA BARU RIMA", "PT. Rajawali", "QA & QC",
	"Seatrium Empire", "Seatrium Tennet", "Security", "Shipwright",
	"Structure & Outfitting", "Subcont Leads Technologies Corporation Pte Ltd",
	"Sub Contractor Alkatra (Bechtel)", "Sub Contractor ANGKASA",
	"Sub Contractor DYNATECH", "Sub Contractor MAHANTARA", "Sub Contractor NOV",
	"Sub Contractor PT JENERIC JAYA", "TRISEA", "Uso Marine", "Warehouse",
	"Works", "Yard",
}

type CreateDepartmentDTO struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

type SeedResult struct {
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

type DepartmentService interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	CreateDepartment(ctx context.Context, req CreateDepartmentDTO) (*model.Department, error)
	// EnsureDepartment returns the named department, creating it if absent.
	// It joins any transaction carried by ctx.
	EnsureDepartment(ctx context.Context, name string) (*model.Department, bool, error)
	SeedDepartments(ctx context.Context) (SeedResult, error)
}

type departmentService struct {
	tx    repository.TransactionManager
	repo  repository.DepartmentRepository
	audit repository.AuditRepository
	actor string
}

func NewDepartmentService(tx repository.TransactionManager, repo repository.DepartmentRepository, audit repository.AuditRepository, actor string) DepartmentService {
	return &departmentService{tx: tx, repo: repo, audit: audit, actor: actor}
}

func (s *departmentService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	depts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return depts, nil
}

func (s *departmentService) CreateDepartment(ctx context.Context, req CreateDepartmentDTO) (*model.Department, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, validationFrom(err)
	}

	dept := model.Department{Name: req.Name, Description: req.Description, IsActive: true}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &dept); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Reason: fmt.Sprintf("department %q already exists", req.Name)}
			}
			return err
		}
		return Ledger{Audit: s.audit, Actor: s.actor}.audit(txCtx, model.ActionCreateDepartment, dept.ID.String(), dept.Name, map[string]interface{}{
			"code": dept.Code,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}

	log.WithField("department", dept.Name).Info("department created")
	return &dept, nil
}

func (s *departmentService) EnsureDepartment(ctx context.Context, name string) (*model.Department, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, &ValidationError{Field: "department_name", Reason: "is required"}
	}

	existing, err := s.lookup(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up department: %w", err)
	}

	dept := model.Department{Name: name, IsActive: true}
	created, err := s.repo.CreateIfAbsent(ctx, &dept)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create department: %w", err)
	}
	if !created {
		// a concurrent writer inserted it between lookup and insert
		existing, err := s.lookup(ctx, name)
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up department: %w", err)
		}
		return existing, false, nil
	}
	log.WithField("department", name).Info("department auto-created")
	return &dept, true, nil
}

// lookup matches the exact name first, then any name sharing its code.
func (s *departmentService) lookup(ctx context.Context, name string) (*model.Department, error) {
	dept, err := s.repo.FindByName(ctx, name)
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return dept, err
	}
	return s.repo.FindByCode(ctx, model.DepartmentCode(name))
}

func (s *departmentService) SeedDepartments(ctx context.Context) (SeedResult, error) {
	var result SeedResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, name := range DefaultDepartments {
			_, created, err := s.EnsureDepartment(txCtx, name)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to seed departments: %w", err)
	}
	result.Message = "Departments seeded successfully"
	return result, nil
}
