package analytics

import (
	"reflect"
	"testing"
)

func TestNormalizeQuestion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "How Do I Submit?", want: "how do i submit"},
		{name: "punctuation stripped", in: "what's a derivative?!", want: "what s a derivative"},
		{name: "whitespace collapsed", in: "  when   is\tthe  exam ", want: "when is the exam"},
		{name: "empty", in: "???", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuestion(tt.in); got != tt.want {
				t.Errorf("NormalizeQuestion(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClusterQuestions_MergesSimilar(t *testing.T) {
	questions := []string{
		"How do I submit my assignment?",
		"How do I submit my assignment?",
		"how do i submit my assignment",
		"How do I submit the assignment?",
		"What is the exam date?",
	}

	clusters := ClusterQuestions(questions, 1, 0)
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2: %+v", len(clusters), clusters)
	}
	if clusters[0].Representative != "How do I submit my assignment?" {
		t.Errorf("representative = %q, want most frequent phrasing", clusters[0].Representative)
	}
	if clusters[0].Count != 4 {
		t.Errorf("cluster count = %d, want 4", clusters[0].Count)
	}
}

func TestClusterQuestions_MinOccurrences(t *testing.T) {
	questions := []string{
		"where is the syllabus",
		"where is the syllabus",
		"completely unrelated question about thermodynamics",
	}

	clusters := ClusterQuestions(questions, 2, 0)
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	if clusters[0].Count != 2 {
		t.Errorf("cluster count = %d, want 2", clusters[0].Count)
	}
}

func TestClusterQuestions_MaxResults(t *testing.T) {
	questions := []string{
		"question alpha one", "question alpha one", "question alpha one",
		"topic beta material two", "topic beta material two",
		"subject gamma item three",
	}

	clusters := ClusterQuestions(questions, 1, 2)
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}
	if clusters[0].Count < clusters[1].Count {
		t.Errorf("clusters not ordered by count: %d before %d", clusters[0].Count, clusters[1].Count)
	}
}

func TestClusterQuestions_Idempotent(t *testing.T) {
	questions := []string{
		"how do I reset my password",
		"How do I reset my password?",
		"what does the grader check",
		"when are office hours",
		"When are office hours?",
		"when are the office hours",
		"how is the final weighted",
	}

	first := ClusterQuestions(questions, 1, 0)
	second := ClusterQuestions(questions, 1, 0)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("clustering not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestClusterQuestions_IgnoresBlank(t *testing.T) {
	clusters := ClusterQuestions([]string{"", "   ", "?!"}, 1, 0)
	if len(clusters) != 0 {
		t.Errorf("got %d clusters from blank input, want 0", len(clusters))
	}
}
