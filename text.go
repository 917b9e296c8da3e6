package main

type Skill struct {
	Name  string
	Level int
}

type SkillGroup struct {
	Title  string
	Skills []Skill
}

type Project struct {
	Title        string
	Summary      string
	Description  string
	Technologies []string
	GitHub       string
}

type SocialLink struct {
	Label string
	Href  string
}

type Education struct {
	Degree      string
	Institution string
	Location    string
	Grade       string
	Years       string
}

var (
	Name    = "Dhanush V"
	Tagline = "Full Stack Developer"

	AboutMe = `A passionate full stack developer who loves transforming ideas into interactive,
	scalable web experiences. Focused on performance, clean code, and user-first design.`

	WorkExperience = `As a recent graduate with a strong foundation in full-stack development,
	I'm excited to bring fresh perspectives, modern technical skills, and a hunger to learn to a
	team that ships real products.`

	SkillGroups = []SkillGroup{
		{Title: "Frontend", Skills: []Skill{{"React", 90}, {"TypeScript", 85}, {"HTML/CSS", 95}, {"Tailwind CSS", 88}}},
		{Title: "Backend", Skills: []Skill{{"Node.js", 85}, {"Express.js", 80}, {"MongoDB", 75}}},
		{Title: "Dev Tools", Skills: []Skill{{"Git/GitHub", 90}, {"Vite", 85}, {"Postman", 80}, {"VS Code", 95}}},
	}

	ProjectOne = Project{
		Title:   "AI-Driven Digital Content Management and Retrieval System",
		Summary: "An intelligent browser extension for capturing and retrieving digital content",
		Description: `A browser extension that captures important text and images from any site or
		application (email, blog, Instagram, etc.), stores them in a user-specific knowledge graph and
		retrieves them through a GPT query engine with source links.`,
		Technologies: []string{"HTML", "CSS", "JavaScript", "Python", "Database: Milvus"},
		GitHub:       "https://github.com/DhanushXploit/BIG-B",
	}

	ContactEmail = "dhanushv136@gmail.com"

	SocialLinks = []SocialLink{
		{Label: "GitHub", Href: "https://github.com/DhanushXploit/DhanushV"},
		{Label: "LinkedIn", Href: "https://www.linkedin.com/in/dhanush-viswalingam"},
		{Label: "X", Href: "https://x.com/DhanushXploit"},
		{Label: "Email", Href: "mailto:" + ContactEmail},
	}

	EducationTimeline = []Education{
		{
			Degree:      "B.Tech Computer Science and Engineering",
			Institution: "Periyar Maniammai Institute of Science and Technology",
			Location:    "Thanjavur",
			Grade:       "7.0 CGPA",
			Years:       "2021-2025",
		},
		{
			Degree:      "12th Grade (Higher Secondary)",
			Institution: "Government Higher Secondary School",
			Location:    "Thamarankottai",
			Grade:       "85.6%",
			Years:       "2020-2021",
		},
		{
			Degree:      "10th Grade (Secondary)",
			Institution: "Government High School",
			Location:    "Moothakkurichi",
			Grade:       "80.8%",
			Years:       "2018-2019",
		},
	}
)
