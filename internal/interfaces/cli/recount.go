package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jhoicas/device-rental-api/internal/domain/entity"
)

// RecountLine resultado de reconteo de un tipo.
type RecountLine struct {
	DeviceTypeID string `json:"device_type_id"`
	Name         string `json:"name"`
	Before       [4]int `json:"before"` // total, available, rented, broken
	After        [4]int `json:"after"`
	Changed      bool   `json:"changed"`
}

// NewRecountCommand crea el comando recount.
func NewRecountCommand(rootOpts *RootOptions) *cobra.Command {
	var facilityID, typeID string
	cmd := &cobra.Command{
		Use:   "recount",
		Short: "Reconstruye los contadores desde el estado de las unidades registradas",
		Long: `Bloquea la fila de stock de cada tipo, cuenta las unidades por estado y, si hay
diferencias, reescribe los contadores registrando un ADJUST con motivo "recount".
Sin --type recorre todos los tipos de la sede.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			svc, err := rootOpts.services(ctx)
			if err != nil {
				return err
			}
			defer svc.backend.Close()
			lines, err := runRecount(ctx, svc, facilityID, typeID)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), rootOpts.Format, lines, func(w io.Writer) {
				for _, l := range lines {
					mark := "="
					if l.Changed {
						mark = "*"
					}
					fmt.Fprintf(w, "%s %s %v -> %v\n", mark, l.Name, l.Before, l.After)
				}
			})
		},
	}
	cmd.Flags().StringVar(&facilityID, "facility", "", "ID de la sede")
	cmd.Flags().StringVar(&typeID, "type", "", "ID del tipo de dispositivo (opcional)")
	_ = cmd.MarkFlagRequired("facility")
	return cmd
}

func runRecount(ctx context.Context, svc *services, facilityID, typeID string) ([]RecountLine, error) {
	types, err := svc.devices.ListTypes(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	lines := make([]RecountLine, 0, len(types))
	for _, t := range types {
		if typeID != "" && t.ID != typeID {
			continue
		}
		res, err := svc.ledger.RecountStock(ctx, facilityID, t.ID, "")
		if err != nil {
			return nil, fmt.Errorf("recount %s: %w", t.Name, err)
		}
		lines = append(lines, RecountLine{
			DeviceTypeID: t.ID,
			Name:         t.Name,
			Before:       counters(res.Before),
			After:        counters(res.After),
			Changed:      res.Changed,
		})
	}
	if typeID != "" && len(lines) == 0 {
		return nil, fmt.Errorf("recount: tipo %s no existe en la sede", typeID)
	}
	return lines, nil
}

func counters(s entity.DeviceStock) [4]int {
	return [4]int{s.Total, s.Available, s.Rented, s.Broken}
}
