package entity

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Categorías de dispositivo.
const (
	DeviceCategoryARGlasses      = "AR_GLASSES"      // AR글라스
	DeviceCategoryBoneConduction = "BONE_CONDUCTION" // 골전도 이어폰
	DeviceCategorySmartphone     = "SMARTPHONE"
	DeviceCategoryOther          = "OTHER"
)

// DeviceType es una categoría de equipo de accesibilidad alquilable dentro de una sede.
type DeviceType struct {
	ID         string
	FacilityID string
	Category   string
	Name       string // nombre visible, normalizado NFC
	CreatedAt  time.Time
}

// IsValidCategory indica si c es una categoría conocida.
func IsValidCategory(c string) bool {
	switch c {
	case DeviceCategoryARGlasses, DeviceCategoryBoneConduction, DeviceCategorySmartphone, DeviceCategoryOther:
		return true
	}
	return false
}

// NormalizeDeviceName recorta espacios y normaliza a NFC. Las etiquetas en hangul pueden
// llegar descompuestas (NFD) desde algunos navegadores y deben mapear a la misma clave.
func NormalizeDeviceName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
