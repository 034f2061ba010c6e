package attendance

import (
	"errors"
	"fmt"
	"net/http"

	"night-attendance-backend/internal/face"
	"night-attendance-backend/internal/platform/apierror"
)

// 出席判定の拒否理由。いずれも 400
const (
	CodeNotEnrolled     apierror.Code = "NOT_ENROLLED"
	CodeFaceMismatch    apierror.Code = "FACE_MISMATCH"
	CodeAlreadyMarked   apierror.Code = "ALREADY_MARKED"
	CodeOutsideGeofence apierror.Code = "OUTSIDE_GEOFENCE"
)

// ErrDuplicate is returned by the store when (student, day) already has a row.
var ErrDuplicate = errors.New("attendance already recorded for this day")

func ErrNotEnrolled() *apierror.Error {
	return apierror.New(http.StatusBadRequest, CodeNotEnrolled, "Face not enrolled. Please enroll first.")
}

func ErrAlreadyMarked() *apierror.Error {
	return apierror.New(http.StatusBadRequest, CodeAlreadyMarked, "Attendance already marked for today.")
}

func ErrFaceMismatch(m face.Match) *apierror.Error {
	msg := fmt.Sprintf("Face verification failed. Distance: %.2f (Threshold: %.2f)", m.Distance, m.Threshold)
	return apierror.New(http.StatusBadRequest, CodeFaceMismatch, msg).WithDetails(map[string]float64{
		"distance":  m.Distance,
		"score":     m.Score(),
		"threshold": m.Threshold,
	})
}

func ErrOutsideGeofence(distanceMeters float64) *apierror.Error {
	return apierror.New(http.StatusBadRequest, CodeOutsideGeofence,
		"You are outside the campus boundary. Attendance cannot be marked.").
		WithDetails(map[string]float64{"distanceMeters": distanceMeters})
}
