package db

import "slices"

// Fixed campus locations. The values are stored verbatim.
const (
	LocationGachonStationExit1 = "가천대역_1번출구"
	LocationMainGate           = "가천대학교_정문"
	LocationGraduateEducation  = "교육대학원"
	LocationAIBuilding         = "AI공학관"
)

var Locations = []string{
	LocationGachonStationExit1,
	LocationMainGate,
	LocationGraduateEducation,
	LocationAIBuilding,
}

var locationLabels = map[string]string{
	LocationGachonStationExit1: "가천대역 1번출구",
	LocationMainGate:           "가천대학교 정문",
	LocationGraduateEducation:  "교육대학원",
	LocationAIBuilding:         "AI공학관",
}

func IsLocation(s string) bool { return slices.Contains(Locations, s) }

// LocationLabel returns the display name, or s itself for unknown values.
func LocationLabel(s string) string {
	if l, ok := locationLabels[s]; ok {
		return l
	}
	return s
}

const (
	UserActive    = "active"
	UserSuspended = "suspended"

	RoomActive = "active"
	RoomClosed = "closed"

	ReportPending  = "pending"
	ReportReviewed = "reviewed"
	ReportResolved = "resolved"
)

var Departments = []string{
	"AI·소프트웨어학부",
	"컴퓨터공학과",
	"전자공학과",
	"기계공학과",
	"건축공학과",
	"화공생명공학과",
	"환경공학과",
	"토목환경공학과",
	"산업경영공학과",
	"경영학과",
	"국제통상학과",
	"관광경영학과",
	"경제학과",
	"사회복지학과",
	"행정학과",
	"법학과",
	"영어영문학과",
	"일본학과",
	"중국학과",
	"한국어문학과",
	"사학과",
	"철학과",
	"의학과",
}

func IsDepartment(s string) bool { return slices.Contains(Departments, s) }
