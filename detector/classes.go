package detector

// COCO class ids emitted by the YOLO vehicle model. Only vehicle classes are
// kept; persons (id 0) and everything else are filtered out before tracking.
// 2=car, 3=motorcycle, 4=auto-rickshaw (custom), 5=bus, 7=truck.
var vehicleClassIDs = map[int]bool{
	2: true,
	3: true,
	4: true,
	5: true,
	7: true,
}

// IsVehicleClass reports whether a raw model class id maps to a vehicle.
func IsVehicleClass(classID int) bool {
	return vehicleClassIDs[classID]
}

// FilterVehicles keeps only valid vehicle detections and collapses their
// labels to ClassVehicle. Invalid or non-vehicle detections are dropped, not
// propagated as errors: one bad detection must never abort a frame.
func FilterVehicles(detections []Detection) []Detection {
	vehicles := make([]Detection, 0, len(detections))
	for _, det := range detections {
		if !det.Valid() {
			continue
		}
		if !IsVehicleClass(det.ClassID) {
			continue
		}
		det.ClassName = ClassVehicle
		vehicles = append(vehicles, det)
	}
	return vehicles
}
