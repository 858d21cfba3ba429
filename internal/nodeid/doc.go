/*
Package nodeid names the parts of a simulated graph with dot-separated paths
of segments, each optionally carrying the numeric id of the node it names:

	pu0.if1[2].then.and3[5]
	pu1.mem[0].a

Builders derive every node, signal and log name from an Address; the HCL
loader uses Parse to resolve endpoint references such as "mem.a".
*/
package nodeid
