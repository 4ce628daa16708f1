package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// SeedFile formato del archivo de carga inicial.
//
//	admin:
//	  email: admin@example.org
//	  password: cambiar-esto
//	facilities:
//	  - name: 서울센터
//	    device_types:
//	      - {category: AR_GLASSES, name: AR글라스, total: 10}
//	    managers:
//	      - {email: seoul@example.org, password: cambiar-esto}
type SeedFile struct {
	Admin      *SeedUser      `yaml:"admin"`
	Facilities []SeedFacility `yaml:"facilities"`
}

// SeedUser operador a crear si su email no existe.
type SeedUser struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// SeedFacility sede con sus tipos y operadores.
type SeedFacility struct {
	Name        string           `yaml:"name"`
	Address     string           `yaml:"address"`
	Phone       string           `yaml:"phone"`
	DeviceTypes []SeedDeviceType `yaml:"device_types"`
	Managers    []SeedUser       `yaml:"managers"`
}

// SeedDeviceType tipo de dispositivo y total deseado.
type SeedDeviceType struct {
	Category string `yaml:"category"`
	Name     string `yaml:"name"`
	Total    int    `yaml:"total"`
}

// SeedReport conteo de lo creado o ajustado. Una segunda corrida con el mismo
// archivo deja todo en cero.
type SeedReport struct {
	FacilitiesCreated int `json:"facilities_created"`
	TypesCreated      int `json:"types_created"`
	StockAdjusted     int `json:"stock_adjusted"`
	UsersCreated      int `json:"users_created"`
}

// ParseSeedFile decodifica y valida el YAML.
func ParseSeedFile(r io.Reader) (*SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: yaml: %w", err)
	}
	for i := range f.Facilities {
		fac := &f.Facilities[i]
		fac.Name = strings.TrimSpace(fac.Name)
		if fac.Name == "" {
			return nil, fmt.Errorf("seed: facilities[%d]: name obligatorio", i)
		}
		for j, dt := range fac.DeviceTypes {
			if !entity.IsValidCategory(dt.Category) || dt.Name == "" {
				return nil, fmt.Errorf("seed: facilities[%d].device_types[%d]: categoría o nombre inválido", i, j)
			}
			if dt.Total < 0 {
				return nil, fmt.Errorf("seed: facilities[%d].device_types[%d]: total negativo", i, j)
			}
		}
	}
	return &f, nil
}

// NewSeedCommand crea el comando seed.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga sedes, tipos, stock inicial y operadores desde YAML",
		Long: `Carga idempotente: las sedes se buscan por nombre, los tipos por (sede, nombre)
y los usuarios por email. El total de cada tipo se lleva al valor del archivo con
un ajuste de motivo "seed" solo si difiere.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()
			seed, err := ParseSeedFile(fh)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			svc, err := rootOpts.services(ctx)
			if err != nil {
				return err
			}
			defer svc.backend.Close()
			report, err := runSeed(ctx, svc, seed)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), rootOpts.Format, report, func(w io.Writer) {
				fmt.Fprintf(w, "sedes creadas: %d\ntipos creados: %d\nstock ajustado: %d\nusuarios creados: %d\n",
					report.FacilitiesCreated, report.TypesCreated, report.StockAdjusted, report.UsersCreated)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "archivo YAML de carga")
	return cmd
}

func runSeed(ctx context.Context, svc *services, seed *SeedFile) (*SeedReport, error) {
	report := &SeedReport{}
	if seed.Admin != nil {
		created, err := ensureUser(ctx, svc, *seed.Admin, "", entity.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if created {
			report.UsersCreated++
		}
	}

	existing, err := facilitiesByName(ctx, svc)
	if err != nil {
		return nil, err
	}
	for _, sf := range seed.Facilities {
		facilityID, ok := existing[sf.Name]
		if !ok {
			fac, err := svc.facilities.Create(ctx, dto.CreateFacilityRequest{Name: sf.Name, Address: sf.Address, Phone: sf.Phone})
			if err != nil {
				return nil, fmt.Errorf("seed: sede %q: %w", sf.Name, err)
			}
			facilityID = fac.ID
			existing[sf.Name] = fac.ID
			report.FacilitiesCreated++
		}
		for _, sdt := range sf.DeviceTypes {
			created, adjusted, err := ensureDeviceType(ctx, svc, facilityID, sdt)
			if err != nil {
				return nil, fmt.Errorf("seed: sede %q tipo %q: %w", sf.Name, sdt.Name, err)
			}
			if created {
				report.TypesCreated++
			}
			if adjusted {
				report.StockAdjusted++
			}
		}
		for _, m := range sf.Managers {
			created, err := ensureUser(ctx, svc, m, facilityID, entity.RoleFacilityManager)
			if err != nil {
				return nil, err
			}
			if created {
				report.UsersCreated++
			}
		}
	}
	return report, nil
}

func facilitiesByName(ctx context.Context, svc *services) (map[string]string, error) {
	const page = 100
	out := make(map[string]string)
	for offset := 0; ; offset += page {
		list, err := svc.facilities.List(ctx, page, offset)
		if err != nil {
			return nil, err
		}
		for _, f := range list.Items {
			out[f.Name] = f.ID
		}
		if len(list.Items) < page {
			return out, nil
		}
	}
}

func ensureDeviceType(ctx context.Context, svc *services, facilityID string, sdt SeedDeviceType) (created, adjusted bool, err error) {
	name := entity.NormalizeDeviceName(sdt.Name)
	types, err := svc.devices.ListTypes(ctx, facilityID)
	if err != nil {
		return false, false, err
	}
	typeID := ""
	for _, t := range types {
		if t.Name == name {
			typeID = t.ID
			break
		}
	}
	if typeID == "" {
		dt, err := svc.devices.CreateType(ctx, facilityID, dto.CreateDeviceTypeRequest{Category: sdt.Category, Name: name})
		if err != nil {
			return false, false, err
		}
		typeID = dt.ID
		created = true
	}
	stock, err := svc.ledger.GetStock(ctx, facilityID, typeID)
	if err != nil {
		return created, false, err
	}
	if stock.Total == sdt.Total {
		return created, false, nil
	}
	_, err = svc.ledger.AdjustStock(ctx, ledger.AdjustInput{
		FacilityID:   facilityID,
		DeviceTypeID: typeID,
		NewTotal:     sdt.Total,
		Reason:       "seed",
	})
	if err != nil {
		return created, false, err
	}
	return created, true, nil
}

func ensureUser(ctx context.Context, svc *services, u SeedUser, facilityID, role string) (bool, error) {
	_, err := svc.auth.RegisterUser(ctx, dto.RegisterRequest{
		Email:      u.Email,
		Password:   u.Password,
		Name:       u.Name,
		FacilityID: facilityID,
		Role:       role,
	})
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed: usuario %q: %w", u.Email, err)
	}
	return true, nil
}
