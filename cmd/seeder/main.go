// cmd/seeder/main.go
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/gymreach/outreach-backend/internal/db"
	"github.com/gymreach/outreach-backend/internal/model"
)

const memberCount = 20

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	conn, err := db.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// 1. Demo gym
	var gymID string
	err = conn.Get(&gymID, `SELECT id FROM gyms LIMIT 1`)
	if err != nil {
		gymID = uuid.NewString()
		if _, err := conn.Exec(`INSERT INTO gyms (id, name, created_at) VALUES ($1, $2, NOW())`,
			gymID, "Demo Gym"); err != nil {
			log.Fatalf("failed to create gym: %v", err)
		}
		fmt.Println("Created gym:", gymID)
	} else {
		fmt.Println("Found gym:", gymID)
	}

	// 2. Demo owner profile
	ownerID := uuid.NewString()
	if _, err := conn.Exec(`
        INSERT INTO profiles (user_id, gym_id, role) VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO NOTHING`,
		ownerID, gymID, model.RoleGymOwner); err != nil {
		log.Fatalf("failed to create profile: %v", err)
	}

	// 3. Demo members, split high/low churn risk; a few pre-opted-out
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	inserted := 0
	for i := 0; i < memberCount; i++ {
		isRisk := rng.Float64() > 0.7
		score := rng.Float64()*35 + 5 // 5-40
		if isRisk {
			score = rng.Float64()*20 + 75 // 75-95
		}

		phone := fmt.Sprintf("+1555%07d", rng.Intn(10000000))
		optedOut := i%7 == 0

		_, err := conn.Exec(`
            INSERT INTO members
            (member_id, gym_id, first_name, last_name, email, phone, sms_opted_out,
             last_churn_score, avg_class_frequency_total, days_since_last_visit, lifetime_tenure, age)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			uuid.NewString(), gymID,
			fmt.Sprintf("Member%d", i), fmt.Sprintf("Test%d", i),
			fmt.Sprintf("member%d@test.com", i), phone, optedOut,
			score, rng.Float64()*15, rng.Intn(60), rng.Float64()*36, 18+rng.Intn(42))
		if err != nil {
			log.Fatalf("failed to insert member %d: %v", i, err)
		}
		inserted++
	}

	fmt.Printf("Inserted %d members into gym %s\n", inserted, gymID)
	fmt.Println("Database seeding completed successfully!")
}
