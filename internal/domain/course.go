package domain

import "strings"

// CurriculumItem is one block of a course plan, a single week or a range.
type CurriculumItem struct {
	Period  string
	Topic   string
	Details string
}

type Course struct {
	ID         string
	Title      string
	Subtitle   string
	Curriculum []CurriculumItem
	Outcomes   string
}

const (
	CourseSelfPaced            = "self-paced"
	CoursePerformanceMarketing = "performance-marketing"
	CourseCareerAccelerator    = "career-accelerator"
)

// CourseIDs lists the catalog in display order.
var CourseIDs = []string{CourseSelfPaced, CoursePerformanceMarketing, CourseCareerAccelerator}

// NormalizeCourseID lowercases id and trims surrounding space.
func NormalizeCourseID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// DefaultCourses returns a fresh copy of the built-in catalog.
func DefaultCourses() []Course {
	return []Course{
		{
			ID:       CourseSelfPaced,
			Title:    "Self-Paced Digital Marketing",
			Subtitle: "8-Week Recorded Program",
			Curriculum: []CurriculumItem{
				{Period: "Week 1", Topic: "Orientation + Fundamentals", Details: "Learn funnels, ICP, KPIs → Create ICP + funnel map"},
				{Period: "Week 2", Topic: "Web & Tracking Basics", Details: "WordPress/Elementor, GA4/GTM → Build 1-page LP with events"},
				{Period: "Week 3", Topic: "Content & Copy Foundations", Details: "AIDA/PAS, Canva → Create 5 ad copies + calendar"},
				{Period: "Week 4", Topic: "Organic Social", Details: "IG/FB/LinkedIn → Develop 7-day plan + 2 reels scripts"},
				{Period: "Week 5", Topic: "Meta Ads Intro", Details: "Objectives, pixel, audiences → Lead-gen campaign plan"},
				{Period: "Week 6", Topic: "Google Ads Intro", Details: "Keywords, RSAs, conversions → Search campaign draft"},
				{Period: "Week 7", Topic: "SEO Basics", Details: "Topic research, on-page → 1 optimised blog"},
				{Period: "Week 8", Topic: "Analytics + Automation", Details: "GA4, Looker, Email/WA, Zapier → 2-page strategy + dashboard"},
			},
			Outcomes: "Perfect for beginners who want to learn digital marketing fundamentals at their own pace. " +
				"You'll complete practical projects and build a solid foundation in all key areas.",
		},
		{
			ID:       CoursePerformanceMarketing,
			Title:    "Performance Marketing",
			Subtitle: "16-Week Live Skill Mastery Program",
			Curriculum: []CurriculumItem{
				{Period: "Weeks 1-4", Topic: "Foundations", Details: "Ecosystem, WordPress/Elementor + GA4/GTM, copy sprint, creatives (Canva/CapCut)"},
				{Period: "Weeks 5-8", Topic: "Social + Meta Ads", Details: "Organic systems, Meta setup, testing, optimisation & scaling"},
				{Period: "Weeks 9-12", Topic: "Performance + SEO", Details: "Google Search/Display/YouTube, SEO on-page, remarketing, dashboards (Looker), CRO"},
				{Period: "Weeks 13-16", Topic: "Automation + Client Readiness", Details: "Email/WhatsApp flows, CRM basics, agency ops, Capstone build & demo"},
			},
			Outcomes: "Launch working funnels & campaigns, show a dashboard, present a capstone; client-ready playbooks & templates. " +
				"Perfect for those serious about performance marketing mastery.",
		},
		{
			ID:       CourseCareerAccelerator,
			Title:    "Career Accelerator",
			Subtitle: "48-Week Comprehensive Career Program",
			Curriculum: []CurriculumItem{
				{Period: "Phase 1 (W1-12)", Topic: "Deep Foundations", Details: "Offers, web, tracking, copy/design, organic, Meta & Google basics, analytics"},
				{Period: "Phase 2 (W13-24)", Topic: "Advanced Performance", Details: "PMAX/Shopping, YouTube, attribution, SEO (clusters/on-page/technical), CRO, automation"},
				{Period: "Phase 3 (W25-36)", Topic: "Specializations", Details: "Choose: E-commerce / B2B-SaaS / Agency Building → Weekly deliverables + capstone demo"},
				{Period: "Phase 4 (W37-44)", Topic: "Growth Systems", Details: "Advanced automation, sales/pipeline, reporting, legal/finance, leadership, hackathon"},
				{Period: "Phase 5 (W45-48)", Topic: "Career Ready", Details: "Portfolio/resume lab, mock interviews, job fair & referrals, offer negotiation + 90-day plan"},
			},
			Outcomes: "The most comprehensive program designed for serious career changers. " +
				"Includes specialization tracks, portfolio building, and guaranteed placement support with our network of 50+ hiring partners.",
		},
	}
}
