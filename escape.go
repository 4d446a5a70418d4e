package mandelbrot

// Escape returns the number of times z = z*z + c is applied, starting from
// zero, before |z| exceeds 2 or maxIter iterations are reached. Points that
// never escape return maxIter.
func Escape(c complex128, maxIter int) int {
	var zr, zi float64
	cr, ci := real(c), imag(c)

	n := 0
	for zr*zr+zi*zi <= 4 && n < maxIter {
		zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
		n++
	}
	return n
}
