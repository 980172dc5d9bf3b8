// Package gtin valida códigos GTIN (Global Trade Item Number).
package gtin

// IsValid verifica un GTIN-8, GTIN-12, GTIN-13 o GTIN-14: solo dígitos,
// longitud 8 a 14 y dígito de control módulo 10 correcto.
func IsValid(code string) bool {
	if len(code) < 8 || len(code) > 14 {
		return false
	}
	sum := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		// Peso 3 en posiciones alternas contando desde la derecha
		// (la posición del dígito de control pesa 1).
		if (len(code)-i)%2 == 0 {
			d *= 3
		}
		sum += d
	}
	return sum%10 == 0
}
