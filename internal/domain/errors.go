package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// Errores del libro de inventario de dispositivos.
var (
	ErrInvalidQuantity   = errors.New("la cantidad debe ser un entero positivo")
	ErrOverReturn        = errors.New("se intenta devolver más unidades de las alquiladas")
	ErrInvalidAdjustment = errors.New("el ajuste dejaría el disponible en negativo")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrAlreadyReturned   = errors.New("el alquiler ya fue devuelto")
)
