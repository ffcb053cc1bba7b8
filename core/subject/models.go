package subject

import "github.com/trezcool/studymatch/core"

type Subject struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Department string `json:"department,omitempty"`
}

// NewSubject contains information needed to add a Subject to the catalog.
type NewSubject struct {
	Name       string `json:"name" validate:"required,max=255"`
	Category   string `json:"category" validate:"required,max=255"`
	Department string `json:"department" validate:"max=255"`
}

func (ns *NewSubject) clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Category = core.CleanString(ns.Category)
	ns.Department = core.CleanString(ns.Department)
}

// DefaultCatalog is loaded by `admin seedsubjects` on a fresh install.
var DefaultCatalog = []NewSubject{
	{Name: "Data Structures", Category: "Programming", Department: "Computer Science"},
	{Name: "Algorithms", Category: "Programming", Department: "Computer Science"},
	{Name: "Database Systems", Category: "Programming", Department: "Computer Science"},
	{Name: "Operating Systems", Category: "Systems", Department: "Computer Science"},
	{Name: "Machine Learning", Category: "AI", Department: "Computer Science"},
	{Name: "Calculus", Category: "Mathematics", Department: "Mathematics"},
	{Name: "Linear Algebra", Category: "Mathematics", Department: "Mathematics"},
	{Name: "Probability & Statistics", Category: "Mathematics", Department: "Mathematics"},
	{Name: "Discrete Mathematics", Category: "Mathematics", Department: "Mathematics"},
	{Name: "Physics I", Category: "Science", Department: "Physics"},
	{Name: "Organic Chemistry", Category: "Science", Department: "Chemistry"},
	{Name: "Circuit Analysis", Category: "Engineering", Department: "Electrical Engineering"},
	{Name: "Thermodynamics", Category: "Engineering", Department: "Mechanical Engineering"},
	{Name: "Microeconomics", Category: "Economics", Department: "Economics"},
	{Name: "Technical Writing", Category: "Languages"},
	{Name: "Public Speaking", Category: "Soft Skills"},
}
