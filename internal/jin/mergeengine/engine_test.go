package mergeengine

import "testing"

func TestMergePathSingleLayer(t *testing.T) {
	result := MergePath("config.json", []LayerContent{
		{RefPath: "refs/jin/layers/global", Content: []byte(`{"a":1}`)},
	}, nil)
	if result.Conflict {
		t.Fatal("single-layer path reported a conflict")
	}
	if string(result.Merged) != `{"a":1}` {
		t.Errorf("Merged = %s, want unchanged single-layer content", result.Merged)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "refs/jin/layers/global" {
		t.Errorf("Sources = %v, want [refs/jin/layers/global]", result.Sources)
	}
}

func TestMergePathIdenticalContentAcrossLayers(t *testing.T) {
	result := MergePath("README.md", []LayerContent{
		{RefPath: "refs/jin/layers/global", Content: []byte("same text\n")},
		{RefPath: "refs/jin/layers/local", Content: []byte("same text\n")},
	}, nil)
	if result.Conflict {
		t.Fatal("identical text content across layers reported a conflict")
	}
	if string(result.Merged) != "same text\n" {
		t.Errorf("Merged = %q, want %q", result.Merged, "same text\n")
	}
}

func TestMergePathTextDivergenceIsConflict(t *testing.T) {
	result := MergePath("README.md", []LayerContent{
		{RefPath: "refs/jin/layers/global", Content: []byte("original text\n")},
		{RefPath: "refs/jin/layers/mode/dev/_", Content: []byte("different text\n")},
	}, nil)
	if !result.Conflict {
		t.Fatal("divergent text across two layers did not conflict")
	}
}

func TestMergePathStructuredDeepMerge(t *testing.T) {
	result := MergePath("config.json", []LayerContent{
		{RefPath: "refs/jin/layers/global", Content: []byte(`{"port":8080,"debug":false}`)},
		{RefPath: "refs/jin/layers/mode/dev/_", Content: []byte(`{"port":9090,"feature":true}`)},
	}, nil)
	if result.Conflict {
		t.Fatalf("structured merge reported a conflict: %v", result.Err)
	}

	v, err := Parse(Json, result.Merged)
	if err != nil {
		t.Fatalf("re-parsing merged JSON failed: %v", err)
	}
	port, _ := v.Object.Get("port")
	if port.Number != "9090" {
		t.Errorf("port = %v, want 9090", port.Number)
	}
	debug, _ := v.Object.Get("debug")
	if debug.Bool != false {
		t.Errorf("debug = %v, want false", debug.Bool)
	}
	feature, ok := v.Object.Get("feature")
	if !ok || feature.Bool != true {
		t.Errorf("feature = %+v, want true", feature)
	}
	if len(result.Sources) != 2 {
		t.Errorf("Sources = %v, want both contributing refs", result.Sources)
	}
}

func TestMergePathMalformedStructuredIsConflict(t *testing.T) {
	result := MergePath("config.json", []LayerContent{
		{RefPath: "refs/jin/layers/global", Content: []byte(`{"a":1}`)},
		{RefPath: "refs/jin/layers/local", Content: []byte(`not json`)},
	}, nil)
	if !result.Conflict {
		t.Fatal("malformed structured content did not become a conflict")
	}
	if result.Err == nil {
		t.Error("Err not set for a parse-failure conflict")
	}
}

func TestMergePathEmptyContents(t *testing.T) {
	result := MergePath("config.json", nil, nil)
	if result.Conflict || result.Merged != nil {
		t.Errorf("MergePath with no contents = %+v, want zero value", result)
	}
}

func TestMergePathThreeLayerKeyedArray(t *testing.T) {
	result := MergePath("list.json", []LayerContent{
		{RefPath: "refs/jin/layers/global", Content: []byte(`{"items":[{"id":"a","v":1}]}`)},
		{RefPath: "refs/jin/layers/mode/dev/_", Content: []byte(`{"items":[{"id":"a","v":2},{"id":"b","v":3}]}`)},
		{RefPath: "refs/jin/layers/local", Content: []byte(`{"items":[{"id":"b","v":4}]}`)},
	}, nil)
	if result.Conflict {
		t.Fatalf("three-layer structured merge reported a conflict: %v", result.Err)
	}
	v, err := Parse(Json, result.Merged)
	if err != nil {
		t.Fatalf("re-parsing merged JSON failed: %v", err)
	}
	items, _ := v.Object.Get("items")
	if len(items.Array) != 2 {
		t.Fatalf("items has %d elements, want 2", len(items.Array))
	}
}
