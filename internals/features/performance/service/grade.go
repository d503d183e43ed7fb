package service

// Percentage menghitung persentase skor. max_score == 0 ⇒ 0, bukan panic.
func Percentage(score, maxScore float64) float64 {
	if maxScore == 0 {
		return 0
	}
	return score / maxScore * 100
}

// Grade memetakan persentase ke huruf, batas bawah inklusif, dievaluasi
// dari atas. Tidak ada pembulatan di sini — caller yang membulatkan
// untuk tampilan.
func Grade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B+"
	case percentage >= 60:
		return "B"
	case percentage >= 50:
		return "C"
	case percentage >= 40:
		return "D"
	default:
		return "F"
	}
}
