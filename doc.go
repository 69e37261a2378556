/*
go-yolo2coco converts YOLO instance segmentation and object detection data
into a single COCO annotation file suitable for auto labeling with tools such
as LabelMe or Label Studio.

Annotations are sourced either from YOLO polygon label text files, or by
running a YOLOv8 segmentation Model on the Rockchip NPU via go-rknnlite (see
the predictor/rknn subpackage).

A conversion runs in three stages, categories from the class list, images
from the image directory, then annotations per image.  The annotation file is
rewritten after each stage so an interrupted run still leaves a valid file
holding everything up to the last completed stage.

See cmd/yolo2coco for the command line tool.
*/
package yolo2coco
