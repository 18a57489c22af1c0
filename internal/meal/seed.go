package meal

import (
	"log"
	"time"
)

// SeedDemo loads a small demo roster: five students, one hall admin, and an
// active dining month managed by the last two students. Intended for local
// runs; gated behind the SEED_DEMO config flag.
func SeedDemo(store *Store) {
	now := time.Now()
	students := []Student{
		{ID: "stu-1", Name: "Arif Hossain", Email: "arif.hossain@university.edu", Password: "student123", HallID: "HALL-001", RegistrationNumber: "REG-2025-001", StudentNumber: "STU-2025-001", Department: "Computer Science", RoomNumber: "101", PhoneNumber: "+880170000001", Balance: 5000},
		{ID: "stu-2", Name: "Nusrat Jahan", Email: "nusrat.jahan@university.edu", Password: "student456", HallID: "HALL-001", RegistrationNumber: "REG-2025-002", StudentNumber: "STU-2025-002", Department: "Electrical Engineering", RoomNumber: "205", PhoneNumber: "+880170000002", Balance: 3500},
		{ID: "stu-3", Name: "Tanvir Ahmed", Email: "tanvir.ahmed@university.edu", Password: "student789", HallID: "HALL-001", RegistrationNumber: "REG-2025-003", StudentNumber: "STU-2025-003", Department: "Mechanical Engineering", RoomNumber: "312", PhoneNumber: "+880170000003", Balance: 2800},
		{ID: "stu-4", Name: "Sadia Rahman", Email: "sadia.rahman@university.edu", Password: "student101", HallID: "HALL-001", RegistrationNumber: "REG-2025-004", StudentNumber: "STU-2025-004", Department: "Civil Engineering", RoomNumber: "408", PhoneNumber: "+880170000004", Balance: 4200},
		{ID: "stu-5", Name: "Imran Kabir", Email: "imran.kabir@university.edu", Password: "student202", HallID: "HALL-001", RegistrationNumber: "REG-2025-005", StudentNumber: "STU-2025-005", Department: "Business Administration", RoomNumber: "515", PhoneNumber: "+880170000005", Balance: 3800},
	}
	for _, st := range students {
		st.CreatedAt = now
		if err := store.AddStudent(st); err != nil {
			log.Printf("seed: student %s: %v", st.ID, err)
		}
	}

	admin := Admin{ID: "admin-1", Name: "Dr. Kamal Uddin", Email: "admin@university.edu", Password: "admin123", HallID: "HALL-001"}
	if err := store.AddAdmin(admin); err != nil {
		log.Printf("seed: admin: %v", err)
	}

	start := DateOnly(now)
	dm := store.OpenDiningMonth(DiningMonth{
		ID:        "dm-1",
		StartDate: start,
		EndDate:   AddDays(start, diningMonthDays-1),
		CreatedBy: admin.ID,
		CreatedAt: now,
	})
	if _, err := store.AssignManagers(dm.ID, []string{"stu-4", "stu-5"}, admin.ID, now); err != nil {
		log.Printf("seed: managers: %v", err)
	}
}
