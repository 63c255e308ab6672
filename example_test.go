package pmap

import "fmt"

func ExampleMap_Set() {
	m := New[string, int](0, nil)
	m.Set("a", 1)
	fmt.Println(m)
	// Output:
	// {a: 1}
}

func ExampleMap_Add() {
	v1 := New[int, string]("", nil)
	v1.Set(0, "foo")
	v2 := v1.Add(0, "bar")
	fmt.Println(v1.Get(0), v2.Get(0))
	// Output:
	// foo bar
}

func ExampleMap_Zip() {
	v1 := New[int, string]("", nil)
	v1.Set(0, "foo")
	v2 := v1.Add(0, "bar")

	z := v2.Zip(v1)
	for !z.Done() {
		key, newValue, oldValue := z.Entry()
		fmt.Printf("%v: %q -> %q\n", key, oldValue, newValue)
		z.Next()
	}
	// Output:
	// 0: "foo" -> "bar"
}
